package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/smartsavernet/internal/database/repository"
	"github.com/jask/smartsavernet/internal/policy"
)

// IngestService handles CSV imports.
type IngestService struct {
	Transactions *repository.TransactionRepo
	Policy       *policy.Policy
}

type IngestResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportCSV reads rows of date, description, amount and an optional category. A header row is
// skipped. Amounts are signed currency units (negative for spend). Re-importing the same row is
// skipped rather than duplicated. Identical rows within one file are distinct charges; each
// repeat is keyed by its occurrence so a second import of the file still skips them all.
func (s *IngestService) ImportCSV(ctx context.Context, r io.Reader, userID string, tz *time.Location) (IngestResult, error) {
	if s.Transactions == nil {
		return IngestResult{}, ErrNoDatabase
	}
	res := IngestResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	line := 0
	seen := map[string]int{}
	for {
		line++
		rec, err := csvr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if line == 1 && isHeader(rec) {
			continue
		}
		if len(rec) < 3 {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: expected at least 3 columns (date, description, amount)", line))
			continue
		}
		date, err := parseLocalDate(rec[0], tz)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d date: %v", line, err))
			continue
		}
		desc := strings.TrimSpace(rec[1])
		cents, err := unitsToCents(rec[2])
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d amount: %v", line, err))
			continue
		}
		var raw string
		if len(rec) > 3 {
			raw = rec[3]
		}

		key := []string{userID, date.Format(repository.DateLayout), fmt.Sprintf("%d", cents), desc}
		id := strings.Join(key, "|")
		if n := seen[id]; n > 0 {
			key = append(key, fmt.Sprintf("#%d", n))
		}
		seen[id]++

		t := repository.Transaction{
			ID:          sourceID(key...),
			UserID:      userID,
			Date:        date,
			Description: desc,
			AmountCents: cents,
			Category:    s.categorize(raw, desc),
		}
		if _, err := s.Transactions.Insert(ctx, t); err != nil {
			if isDuplicate(err) {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, fmt.Sprintf("line %d insert: %v", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

// categorize prefers the file's category, then merchant keywords.
func (s *IngestService) categorize(raw, description string) string {
	if strings.TrimSpace(raw) != "" {
		return s.Policy.Canonical(raw)
	}
	if cat, ok := s.Policy.CategoryFor(description); ok {
		return cat
	}
	return s.Policy.Canonical("")
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "date")
}

func isDuplicate(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "Duplicate entry")
}

func unitsToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, err
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

func sourceID(parts ...string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(parts, "|"))).String()
}

func parseLocalDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{repository.DateLayout, "2/01/2006"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
