package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fight-timeline/internal/database"
	"fight-timeline/internal/domain"
	"fight-timeline/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "disabled")

	cmd := newCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedSample(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fights.db")

	out, err := execute(t, "--sample", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "loaded 2 promotions, 4 events, 4 fighters, 5 fights")

	db, err := database.Open(dbPath, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	n, err := repository.NewFighterRepository(db, zerolog.Nop()).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestSeedFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tiny.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
events:
  - {id: e1, name: Local 1, dateof: "2022-03-04"}
fighters:
  - {id: a, name: A, initial: true}
  - {id: b, name: B}
fights:
  - id: f1
    event: e1
    fighters:
      - {fighter: a, result: win}
      - {fighter: b, result: loss}
`), 0o644))
	dbPath := filepath.Join(dir, "fights.db")

	_, err := execute(t, file, "--db", dbPath)
	require.NoError(t, err)

	db, err := database.Open(dbPath, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	initial, err := repository.NewFighterRepository(db, zerolog.Nop()).InitialSelected(context.Background())
	require.NoError(t, err)
	require.Len(t, initial, 1)
	assert.Equal(t, domain.ResultWin, initial[0].Fights[0].Result)
}

func TestSeedDryRunReportsInvalidData(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
events:
  - {id: e1, name: Local 1, dateof: "March 4th"}
`), 0o644))

	_, err := execute(t, file, "--dry-run")
	assert.ErrorIs(t, err, domain.ErrMalformedDate)

	out, err := execute(t, "--sample", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dataset is valid")
}

func TestSeedNeedsExactlyOneSource(t *testing.T) {
	_, err := execute(t)
	assert.Error(t, err)

	_, err = execute(t, "data.yaml", "--sample")
	assert.Error(t, err)
}
