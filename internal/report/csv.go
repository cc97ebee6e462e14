package report

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/shopspring/decimal"
)

const (
	utf8BOM       = "\uFEFF"
	csvDateLayout = "02/01/2006"
)

// CSVHeader is the fixed column order of exported files
var CSVHeader = []string{"Data", "Descrição", "Categoria", "Valor", "Tipo"}

// ErrCSVHeader is returned when an imported file does not start with CSVHeader
var ErrCSVHeader = errors.New("csv header does not match Data,Descrição,Categoria,Valor,Tipo")

// CSVError locates a malformed row of an imported file
type CSVError struct {
	Line int
	Err  error
}

func (e *CSVError) Error() string {
	return fmt.Sprintf("csv line %d: %v", e.Line, e.Err)
}

func (e *CSVError) Unwrap() error {
	return e.Err
}

// WriteCSV writes transactions as BOM-prefixed UTF-8 CSV. Dates are written
// as dd/MM/yyyy and amounts with two decimals and a dot separator. A date
// that cannot be parsed is written as stored.
func WriteCSV(w io.Writer, txs []*domain.Transaction) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, tx := range txs {
		date := tx.Data
		if d, err := util.ParseDate(tx.Data); err == nil {
			date = d.Format(csvDateLayout)
		}
		record := []string{
			date,
			tx.Descricao,
			tx.Categoria,
			tx.Valor.StringFixed(2),
			string(tx.Operacao),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseCSV reads a file produced by WriteCSV (or edited by hand in the same
// layout) back into unsaved transactions. Dates may be dd/MM/yyyy or
// yyyy-MM-dd; amounts may use a dot or pt-BR decimal comma.
func ParseCSV(r io.Reader) ([]*domain.Transaction, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, []byte(utf8BOM)) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = len(CSVHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrCSVHeader
		}
		return nil, err
	}
	for i, col := range CSVHeader {
		if strings.TrimSpace(header[i]) != col {
			return nil, ErrCSVHeader
		}
	}

	var out []*domain.Transaction
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &CSVError{Line: line, Err: err}
		}

		tx, err := parseRecord(record)
		if err != nil {
			return nil, &CSVError{Line: line, Err: err}
		}
		out = append(out, tx)
	}
	return out, nil
}

func parseRecord(record []string) (*domain.Transaction, error) {
	date, err := parseCSVDate(strings.TrimSpace(record[0]))
	if err != nil {
		return nil, err
	}

	valor, err := parseCSVAmount(strings.TrimSpace(record[3]))
	if err != nil {
		return nil, err
	}

	op, ok := NormalizeKind(record[4])
	if !ok {
		return nil, domain.ErrInvalidOperation
	}

	return &domain.Transaction{
		Data:      date,
		Descricao: strings.TrimSpace(record[1]),
		Categoria: strings.TrimSpace(record[2]),
		Valor:     valor,
		Operacao:  op,
	}, nil
}

func parseCSVDate(s string) (string, error) {
	if d, err := time.ParseInLocation(csvDateLayout, s, util.ReferenceLocation); err == nil {
		return d.Format(util.DateLayout), nil
	}
	if d, err := util.ParseDate(s); err == nil {
		return d.Format(util.DateLayout), nil
	}
	return "", domain.ErrInvalidDate
}

func parseCSVAmount(s string) (decimal.Decimal, error) {
	if d, err := decimal.NewFromString(s); err == nil {
		return d, nil
	}
	// pt-BR: "1.234,56"
	normalized := strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}
	return d, nil
}
