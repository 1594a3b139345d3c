package dedupe

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func testEngine() *Engine {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewEngine(logger, DefaultConfig())
}

func librarianBatch() []models.Record {
	return []models.Record{
		{
			"jobtype":        "Vollzeit",
			"jobdescription": "Bibliothekar für die Stadtbibliothek gesucht",
			"company":        "Stadtbibliothek Leipzig",
			"location":       "Leipzig",
		},
		{
			"jobtype":        "Vollzeit",
			"jobdescription": "Bibliothekar für die Stadtbibliothek gesucht",
			"company":        "Stadtbibliothek Leipzig GmbH",
			"location":       "Leipzig",
			"salary":         "E9",
		},
		{
			"jobtype":        "Vollzeit",
			"jobdescription": "Pilot für Langstreckenflüge gesucht",
			"company":        "Condor",
			"location":       "Frankfurt",
		},
		{
			"jobtype":        "Teilzeit",
			"jobdescription": "Bibliothekar für die Stadtbibliothek gesucht",
			"company":        "Stadtbibliothek Leipzig",
			"location":       "Leipzig",
		},
	}
}

func TestEngine_Run(t *testing.T) {
	engine := testEngine()
	def := models.DefaultDefinition()
	def.SalaryField = ""

	t.Run("detects near duplicates inside a block", func(t *testing.T) {
		result, err := engine.Run(context.Background(), &def, librarianBatch(), RunOptions{})
		require.NoError(t, err)

		assert.Equal(t, 4, result.Summary.TotalRecords)
		assert.Equal(t, 1, result.Summary.DroppedRecords)
		assert.Len(t, result.Cleaned, 3)
		require.Len(t, result.Links, 1)

		// The record carrying the salary field is richer and survives.
		assert.Equal(t, 1, result.Links[0].KeepIndex)
		assert.Equal(t, 0, result.Links[0].DropIndex)
	})

	t.Run("blocking separates different jobtypes", func(t *testing.T) {
		result, err := engine.Run(context.Background(), &def, librarianBatch(), RunOptions{})
		require.NoError(t, err)

		// Record 3 matches the librarian text but sits in the Teilzeit
		// block and must survive.
		for _, link := range result.Links {
			assert.NotEqual(t, 3, link.DropIndex)
		}
		assert.Equal(t, 2, result.Summary.Blocks)
	})

	t.Run("different postings stay apart", func(t *testing.T) {
		result, err := engine.Run(context.Background(), &def, librarianBatch(), RunOptions{})
		require.NoError(t, err)
		for _, link := range result.Links {
			assert.NotEqual(t, 2, link.DropIndex)
		}
	})

	t.Run("rerun on cleaned output drops nothing", func(t *testing.T) {
		first, err := engine.Run(context.Background(), &def, librarianBatch(), RunOptions{})
		require.NoError(t, err)

		second, err := engine.Run(context.Background(), &def, first.Cleaned, RunOptions{})
		require.NoError(t, err)
		assert.Zero(t, second.Summary.DroppedRecords)
		assert.Len(t, second.Cleaned, len(first.Cleaned))
	})

	t.Run("dotted company spelling still links", func(t *testing.T) {
		records := []models.Record{
			{
				"jobtype":        "Vollzeit",
				"jobdescription": "Bibliothekar für die Stadtbibliothek gesucht",
				"company":        "ABC GmbH",
				"location":       "Leipzig",
			},
			{
				"jobtype":        "Vollzeit",
				"jobdescription": "Bibliothekar für die Stadtbibliothek gesucht",
				"company":        "A.B.C. GmbH",
				"location":       "Leipzig",
			},
		}
		result, err := engine.Run(context.Background(), &def, records, RunOptions{})
		require.NoError(t, err)
		require.Len(t, result.Links, 1)
		assert.GreaterOrEqual(t, result.Links[0].Probability, 95)
	})

	t.Run("cleaned set of chained near matches is a fixed point", func(t *testing.T) {
		// Similarity is not transitive: each record links to one two steps
		// away in the chain but not to its direct neighbor. The two group
		// keepers then link to each other and must collapse into one.
		records := []models.Record{
			{"jobtype": "Vollzeit", "jobdescription": "Koch für die Kantine gesucht", "geo_lat": 50.0000},
			{"jobtype": "Vollzeit", "jobdescription": "Koch für die Kantine gesucht", "geo_lat": 50.0012},
			{"jobtype": "Vollzeit", "jobdescription": "Koch für die Kantine gesucht", "geo_lat": 50.0004, "refnr": "A"},
			{"jobtype": "Vollzeit", "jobdescription": "Koch für die Kantine gesucht", "geo_lat": 50.0008, "refnr": "B"},
		}
		first, err := engine.Run(context.Background(), &def, records, RunOptions{})
		require.NoError(t, err)
		require.Len(t, first.Cleaned, 1)

		second, err := engine.Run(context.Background(), &def, first.Cleaned, RunOptions{})
		require.NoError(t, err)
		assert.Zero(t, second.Summary.DroppedRecords)
		assert.Empty(t, second.Links)
	})

	t.Run("raising the threshold never drops more", func(t *testing.T) {
		strict, err := engine.Run(context.Background(), &def, librarianBatch(), RunOptions{Threshold: 99})
		require.NoError(t, err)
		loose, err := engine.Run(context.Background(), &def, librarianBatch(), RunOptions{Threshold: 90})
		require.NoError(t, err)
		assert.LessOrEqual(t, strict.Summary.DroppedRecords, loose.Summary.DroppedRecords)
	})

	t.Run("report and export agree", func(t *testing.T) {
		result, err := engine.Run(context.Background(), &def, librarianBatch(), RunOptions{})
		require.NoError(t, err)
		require.Len(t, result.Export, len(result.Report))
		for i, row := range result.Export {
			assert.Equal(t, result.Report[i].OrigIndex, row.OrigIndex)
			if row.Keep {
				assert.Nil(t, row.DuplicateOf)
			} else {
				require.NotNil(t, row.DuplicateOf)
			}
		}
	})

	t.Run("progress reaches one", func(t *testing.T) {
		var last float64
		_, err := engine.Run(context.Background(), &def, librarianBatch(), RunOptions{
			OnProgress: func(fraction float64) { last = fraction },
		})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, last, 1e-9)
	})

	t.Run("input batch is not mutated", func(t *testing.T) {
		batch := librarianBatch()
		_, err := engine.Run(context.Background(), &def, batch, RunOptions{})
		require.NoError(t, err)
		assert.Equal(t, librarianBatch(), batch)
	})
}

func TestEngine_Run_Gates(t *testing.T) {
	engine := testEngine()

	t.Run("salary grades two apart block the match", func(t *testing.T) {
		def := models.DefaultDefinition()
		records := []models.Record{
			{
				"jobtype":        "Vollzeit",
				"jobdescription": "Sachbearbeiter für das Bürgeramt gesucht",
				"salary":         "E9",
			},
			{
				"jobtype":        "Vollzeit",
				"jobdescription": "Sachbearbeiter für das Bürgeramt gesucht",
				"salary":         "E7",
			},
		}
		result, err := engine.Run(context.Background(), &def, records, RunOptions{})
		require.NoError(t, err)
		assert.Zero(t, result.Summary.DroppedRecords)
	})

	t.Run("contradictory employment terms block the match", func(t *testing.T) {
		def := models.DefaultDefinition()
		records := []models.Record{
			{"jobdescription": "Sachbearbeiter gesucht, die Stelle ist befristet"},
			{"jobdescription": "Sachbearbeiter gesucht, die Stelle ist unbefristet"},
		}
		result, err := engine.Run(context.Background(), &def, records, RunOptions{})
		require.NoError(t, err)
		assert.Zero(t, result.Summary.DroppedRecords)
	})

	t.Run("different companies block the match", func(t *testing.T) {
		def := models.DefaultDefinition()
		records := []models.Record{
			{
				"jobdescription": "Fahrer für den Lieferverkehr gesucht",
				"company":        "Brandt Logistik GmbH",
			},
			{
				"jobdescription": "Fahrer für den Lieferverkehr gesucht",
				"company":        "Hoffmann Transporte GmbH",
			},
		}
		result, err := engine.Run(context.Background(), &def, records, RunOptions{})
		require.NoError(t, err)
		assert.Zero(t, result.Summary.DroppedRecords)
	})
}

func TestEngine_Run_EdgeCases(t *testing.T) {
	engine := testEngine()
	def := models.DefaultDefinition()

	t.Run("empty batch", func(t *testing.T) {
		result, err := engine.Run(context.Background(), &def, nil, RunOptions{})
		require.NoError(t, err)
		assert.Zero(t, result.Summary.TotalRecords)
		assert.Empty(t, result.Cleaned)
		assert.Empty(t, result.Links)
	})

	t.Run("single record", func(t *testing.T) {
		result, err := engine.Run(context.Background(), &def, []models.Record{
			{"jobdescription": "Koch gesucht"},
		}, RunOptions{})
		require.NoError(t, err)
		assert.Len(t, result.Cleaned, 1)
		assert.Empty(t, result.Links)
	})

	t.Run("configured fields absent from batch", func(t *testing.T) {
		result, err := engine.Run(context.Background(), &def, []models.Record{
			{"title": "Koch"},
			{"title": "Koch"},
		}, RunOptions{})
		require.NoError(t, err)
		assert.NotNil(t, result)
	})

	t.Run("nil definition", func(t *testing.T) {
		_, err := engine.Run(context.Background(), nil, nil, RunOptions{})
		assert.Error(t, err)
	})

	t.Run("invalid definition", func(t *testing.T) {
		bad := models.DefaultDefinition()
		bad.ExactFields = append(bad.ExactFields, bad.FuzzyFields[0])
		_, err := engine.Run(context.Background(), &bad, nil, RunOptions{})
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := engine.Run(ctx, &def, librarianBatch(), RunOptions{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
