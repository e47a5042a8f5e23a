/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/datacheck/expectation"
)

const ordersSuiteYAML = `name: orders
expectations:
  - type: expect_column_values_to_not_be_null
    kwargs: {column: id}
  - type: expect_column_values_to_be_in_set
    kwargs: {column: status, value_set: [ok, late]}
  - type: expect_column_max_to_be_between
    kwargs: {column: amount, max_value: {$PARAMETER: max_amount}}
`

const ordersCSV = `id,status,amount
1,ok,10
2,late,20.5
3,ok,30
`

type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	for _, name := range []string{"DATACHECK_MODE", "DATACHECK_STORE_BACKEND", "DATACHECK_STORE_DIR", "DATACHECK_RESULT_FORMAT"} {
		t.Setenv(name, "")
	}
	dir := t.TempDir()
	w := workspace{dir: dir, config: filepath.Join(dir, "datacheck.yaml")}
	w.write(t, "datacheck.yaml", "store:\n  backend: fs\n  dir: "+filepath.Join(dir, "store")+"\nlog:\n  level: error\n")
	w.write(t, "orders.yaml", ordersSuiteYAML)
	w.write(t, "orders.csv", ordersCSV)
	return w
}

func (w workspace) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(w.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (w workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"--config", w.config}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

type suiteOutput struct {
	Success    bool `json:"success"`
	Statistics struct {
		EvaluatedExpectations    int `json:"evaluated_expectations"`
		UnsuccessfulExpectations int `json:"unsuccessful_expectations"`
	} `json:"statistics"`
	Results []struct {
		Success bool `json:"success"`
		Result  struct {
			UnexpectedCount *int `json:"unexpected_count"`
			UnexpectedList  []any `json:"unexpected_list"`
		} `json:"result"`
		ExceptionInfo *struct {
			RaisedException bool `json:"raised_exception"`
		} `json:"exception_info"`
	} `json:"results"`
}

func decode(t *testing.T, out string) suiteOutput {
	t.Helper()
	var res suiteOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res
}

func TestVersionCommand(t *testing.T) {
	w := newWorkspace(t)
	out, err := w.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "datacheck version")

	out, err = w.run(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["version"])
}

func TestExpectationsCommand(t *testing.T) {
	w := newWorkspace(t)
	out, err := w.run(t, "expectations")
	require.NoError(t, err)
	assert.Contains(t, out, expectation.ValuesNotNull+"(column, mostly)")
	assert.Contains(t, out, expectation.IPAddressInNetwork)
}

func TestValidateCSV(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run(t, "validate", "--suite", w.path("orders.yaml"), "--csv", w.path("orders.csv"), "--param", "max_amount=50")
	require.NoError(t, err, out)
	res := decode(t, out)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Statistics.EvaluatedExpectations)

	t.Run("failures exit non-zero", func(t *testing.T) {
		out, err := w.run(t, "validate", "--suite", w.path("orders.yaml"), "--csv", w.path("orders.csv"),
			"--param", "max_amount=25", "--format", "COMPLETE")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 3 expectations unsuccessful")
		res := decode(t, out)
		assert.False(t, res.Success)
		assert.False(t, res.Results[2].Success)
	})

	t.Run("missing parameter is reported per expectation", func(t *testing.T) {
		out, err := w.run(t, "validate", "--suite", w.path("orders.yaml"), "--csv", w.path("orders.csv"))
		require.Error(t, err)
		res := decode(t, out)
		require.NotNil(t, res.Results[2].ExceptionInfo)
		assert.True(t, res.Results[2].ExceptionInfo.RaisedException)
		assert.True(t, res.Results[0].Success)
	})

	t.Run("batch request options filter rows", func(t *testing.T) {
		out, err := w.run(t, "validate", "--suite", w.path("orders.yaml"), "--csv", w.path("orders.csv"),
			"--param", "max_amount=10", "--option", "status=ok")
		require.Error(t, err, "rows with status ok reach amount 30")
		assert.False(t, decode(t, out).Results[2].Success)
	})
}

func TestValidateSQLite(t *testing.T) {
	w := newWorkspace(t)
	dbPath := w.path("orders.db")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE orders (id INTEGER, status TEXT, amount REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO orders VALUES (1, 'ok', 10), (2, 'late', 20.5), (NULL, 'lost', 3)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := w.run(t, "validate", "--suite", w.path("orders.yaml"), "--sqlite", dbPath, "--table", "orders",
		"--order-by", "amount", "--param", "max_amount=100", "--format", "COMPLETE")
	require.Error(t, err)
	res := decode(t, out)
	assert.Equal(t, 2, res.Statistics.UnsuccessfulExpectations)
	require.NotNil(t, res.Results[1].Result.UnexpectedCount)
	assert.Equal(t, 1, *res.Results[1].Result.UnexpectedCount)
	assert.Equal(t, []any{"lost"}, res.Results[1].Result.UnexpectedList)
}

func TestSourceFlags(t *testing.T) {
	w := newWorkspace(t)
	_, err := w.run(t, "validate", "--suite", w.path("orders.yaml"))
	assert.Error(t, err)

	_, err = w.run(t, "validate", "--suite", w.path("orders.yaml"), "--csv", w.path("orders.csv"), "--sqlite", "x.db")
	assert.Error(t, err)

	_, err = w.run(t, "validate", "--suite", w.path("orders.yaml"), "--csv", w.path("orders.csv"), "--param", "novalue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want name=value")
}

func TestSaveAndRun(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run(t, "validate", "--suite", w.path("orders.yaml"), "--csv", w.path("orders.csv"),
		"--param", "max_amount=50", "--save", "nightly")
	require.NoError(t, err, out)

	out, err = w.run(t, "run", "nightly", "--csv", w.path("orders.csv"), "--param", "max_amount=50")
	require.NoError(t, err, out)
	assert.True(t, decode(t, out).Success)

	out, err = w.run(t, "suites", "list")
	require.NoError(t, err)
	assert.Equal(t, "orders\n", out)

	_, err = w.run(t, "run", "weekly", "--csv", w.path("orders.csv"))
	assert.Error(t, err)
}

func TestSuitesCommands(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run(t, "suites", "add", w.path("orders.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "version 1")

	_, err = w.run(t, "suites", "add", w.path("orders.yaml"))
	assert.Error(t, err, "a second suite cannot take the name")

	out, err = w.run(t, "suites", "add", "--update", w.path("orders.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "version 2")

	out, err = w.run(t, "suites", "show", "orders")
	require.NoError(t, err)
	var suite expectation.Suite
	require.NoError(t, json.Unmarshal([]byte(out), &suite))
	assert.Equal(t, "orders", suite.Name)
	assert.Len(t, suite.Expectations, 3)

	_, err = w.run(t, "suites", "remove", "orders")
	require.NoError(t, err)
	out, err = w.run(t, "suites", "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}
