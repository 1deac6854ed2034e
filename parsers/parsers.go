// Package parsers turns uploaded question files into validated payloads.
//
// Both supported formats carry one question per row as six
// semicolon-separated columns: text, four options, correct option number.
// CSV additionally allows quoting for values that contain semicolons.
package parsers

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/m-ce-m1/html-bot/models"
)

const columns = 6

var validate = validator.New()

// ParseQuestions dispatches on the file extension and returns the parsed
// rows. A file that yields no questions is an error.
func ParseQuestions(filename string, r io.Reader) ([]models.QuestionPayload, error) {
	var (
		payloads []models.QuestionPayload
		err      error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		payloads, err = parseCSV(r)
	case ".txt":
		payloads, err = parseTXT(r)
	default:
		return nil, fmt.Errorf("unsupported file type %q, expected .csv or .txt", ext)
	}
	if err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, fmt.Errorf("file %q contains no questions", filepath.Base(filename))
	}
	return payloads, nil
}

func parseCSV(r io.Reader) ([]models.QuestionPayload, error) {
	rdr := csv.NewReader(r)
	rdr.Comma = ';'
	rdr.FieldsPerRecord = columns
	rdr.TrimLeadingSpace = true

	var out []models.QuestionPayload
	for row := 1; ; row++ {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		p, err := rowToPayload(rec, row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parseTXT(r io.Reader) ([]models.QuestionPayload, error) {
	var out []models.QuestionPayload
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, ";")
		if len(fields) != columns {
			return nil, fmt.Errorf("line %d: expected %d columns separated by ';', got %d", line, columns, len(fields))
		}
		p, err := rowToPayload(fields, line)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func rowToPayload(fields []string, line int) (models.QuestionPayload, error) {
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	correct, err := strconv.Atoi(fields[5])
	if err != nil {
		return models.QuestionPayload{}, fmt.Errorf("line %d: correct option %q is not a number", line, fields[5])
	}
	p := models.QuestionPayload{
		Text:          fields[0],
		Options:       fields[1:5],
		CorrectOption: correct,
	}
	if err := validate.Struct(&p); err != nil {
		return models.QuestionPayload{}, fmt.Errorf("line %d: %w", line, err)
	}
	return p, nil
}
