/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package batch

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/execution"
)

var validate = validator.New()

// FrameAsset serves batches from an in-memory frame.
type FrameAsset struct {
	assetBase
	frame *execution.Frame
}

// AddBatchConfig creates and saves a batch config on the asset.
func (a *FrameAsset) AddBatchConfig(name string, partitioner *Partitioner) (*Config, error) {
	return addBatchConfig(a, name, partitioner)
}

func (a *FrameAsset) BuildBatchRequest(options RequestOptions, partitioner *Partitioner) (Request, error) {
	if err := checkFrameRequest(a.frame, options, partitioner); err != nil {
		return Request{}, err
	}
	return a.request(options, partitioner), nil
}

func (a *FrameAsset) GetBatch(_ context.Context, req Request) (execution.Batch, error) {
	return frameBatch(a.frame, req)
}

// CSVAsset serves batches read from a CSV file with a header row. The file
// is read on every batch request.
type CSVAsset struct {
	assetBase
	path string
}

// Path returns the file the asset reads.
func (a *CSVAsset) Path() string {
	return a.path
}

// AddBatchConfig creates and saves a batch config on the asset.
func (a *CSVAsset) AddBatchConfig(name string, partitioner *Partitioner) (*Config, error) {
	return addBatchConfig(a, name, partitioner)
}

func (a *CSVAsset) BuildBatchRequest(options RequestOptions, partitioner *Partitioner) (Request, error) {
	if partitioner != nil {
		if err := validate.Struct(partitioner); err != nil {
			return Request{}, errors.NewValidationError("partitioner", err.Error())
		}
	}
	return a.request(options, partitioner), nil
}

func (a *CSVAsset) GetBatch(_ context.Context, req Request) (execution.Batch, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.path, err)
	}
	defer f.Close()

	frame, err := ReadCSV(f, a.name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", a.path, err)
	}
	if err := checkFrameRequest(frame, req.Options, req.Partitioner); err != nil {
		return nil, err
	}
	return frameBatch(frame, req)
}

// ReadCSV reads a CSV document with a header row into a frame. Cells are
// typed with execution.ParseValue.
func ReadCSV(r io.Reader, id string) (*execution.Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewValidationError("csv", "missing header row")
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]any
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]any, len(record))
		for i, cell := range record {
			row[i] = execution.ParseValue(cell)
		}
		rows = append(rows, row)
	}
	return execution.NewFrame(id, header, rows)
}

func checkFrameRequest(frame *execution.Frame, options RequestOptions, partitioner *Partitioner) error {
	for _, key := range options.Keys() {
		if _, err := frame.Column(key); err != nil {
			return errors.NewValidationError("options", fmt.Sprintf("unknown batch request option %q", key))
		}
	}
	if partitioner != nil {
		if err := validate.Struct(partitioner); err != nil {
			return errors.NewValidationError("partitioner", err.Error())
		}
	}
	return nil
}

func frameBatch(frame *execution.Frame, req Request) (execution.Batch, error) {
	constraints := make(map[string][]any, len(req.Options))
	for _, key := range req.Options.Keys() {
		constraints[key] = req.Options.Allowed(key)
	}
	filtered, err := frame.Filter(constraints)
	if err != nil {
		return nil, err
	}
	filtered = filtered.WithID(req.ID())
	if req.Partitioner != nil && req.Partitioner.Partitions > 1 {
		return execution.NewPartitionedFrame(filtered, req.Partitioner.Partitions, req.Partitioner.Parallelism), nil
	}
	return filtered, nil
}

// SQLAsset serves batches from a database table.
type SQLAsset struct {
	assetBase
	db      *sql.DB
	table   string
	orderBy string
}

// AddBatchConfig creates and saves a batch config on the asset.
func (a *SQLAsset) AddBatchConfig(name string) (*Config, error) {
	return addBatchConfig(a, name, nil)
}

func (a *SQLAsset) BuildBatchRequest(options RequestOptions, partitioner *Partitioner) (Request, error) {
	if partitioner != nil {
		return Request{}, errors.NewValidationError("partitioner", "sql assets cannot be partitioned")
	}
	return a.request(options, nil), nil
}

func (a *SQLAsset) GetBatch(_ context.Context, req Request) (execution.Batch, error) {
	var (
		clauses []string
		args    []any
	)
	for _, key := range req.Options.Keys() {
		allowed := req.Options.Allowed(key)
		if len(allowed) == 0 {
			clauses = append(clauses, "1 = 0")
			continue
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(allowed)), ", ")
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", execution.QuoteIdent(key), marks))
		for _, v := range allowed {
			args = append(args, execution.SQLArg(v))
		}
	}
	var opts []execution.SQLOption
	if a.orderBy != "" {
		opts = append(opts, execution.WithOrderBy(execution.QuoteIdent(a.orderBy)))
	}
	if len(clauses) > 0 {
		opts = append(opts, execution.WithWhere(strings.Join(clauses, " AND "), args...))
	}
	return execution.NewSQLBatch(req.ID(), a.db, a.table, opts...), nil
}
