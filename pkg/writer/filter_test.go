package writer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logpipe/pkg/record"
	"logpipe/pkg/writer"
)

func rec(level record.Level, category, msg string) record.Record {
	r := record.New(level, msg, time.Now())
	r.Category = category
	return r
}

func TestLevelFilter(t *testing.T) {
	f := writer.LevelFilter(record.Warning)
	assert.False(t, f.Accept(rec(record.Info, "", "x")))
	assert.True(t, f.Accept(rec(record.Warning, "", "x")))
	assert.True(t, f.Accept(rec(record.Error, "", "x")))
}

func TestExactLevelFilter(t *testing.T) {
	f := writer.ExactLevelFilter(record.Warning)
	assert.False(t, f.Accept(rec(record.Error, "", "x")))
	assert.True(t, f.Accept(rec(record.Warning, "", "x")))
}

func TestCategoryFilter(t *testing.T) {
	include := writer.CategoryFilter([]string{"billing", "auth"}, false)
	assert.True(t, include.Accept(rec(record.Info, "billing", "x")))
	assert.False(t, include.Accept(rec(record.Info, "ops", "x")))

	exclude := writer.CategoryFilter([]string{"billing"}, true)
	assert.False(t, exclude.Accept(rec(record.Info, "billing", "x")))
	assert.True(t, exclude.Accept(rec(record.Info, "ops", "x")))
}

func TestPatternFilter(t *testing.T) {
	p, err := writer.NewPatternFilter(`^payment (succeeded|failed)$`)
	require.NoError(t, err)
	assert.True(t, p.Accept(rec(record.Info, "", "payment succeeded")))
	assert.False(t, p.Accept(rec(record.Info, "", "payment pending")))
}

func TestAndShortCircuitsOnFirstReject(t *testing.T) {
	f := writer.And(writer.LevelFilter(record.Warning), writer.CategoryFilter([]string{"billing"}, false))
	assert.True(t, f.Accept(rec(record.Error, "billing", "x")))
	assert.False(t, f.Accept(rec(record.Error, "ops", "x")))
	assert.False(t, f.Accept(rec(record.Info, "billing", "x")))
}

func TestOrAcceptsOnFirstMatch(t *testing.T) {
	f := writer.Or(writer.ExactLevelFilter(record.Debug), writer.CategoryFilter([]string{"audit"}, false))
	assert.True(t, f.Accept(rec(record.Debug, "", "x")))
	assert.True(t, f.Accept(rec(record.Error, "audit", "x")))
	assert.False(t, f.Accept(rec(record.Error, "ops", "x")))
}

func TestNotNegates(t *testing.T) {
	f := writer.Not(writer.LevelFilter(record.Error))
	assert.True(t, f.Accept(rec(record.Info, "", "x")))
	assert.False(t, f.Accept(rec(record.Error, "", "x")))
}
