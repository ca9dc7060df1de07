package mongodb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

func TestReportDocumentRoundTrip(t *testing.T) {
	report := models.HerdReport{
		FarmID:      3,
		FarmName:    "Hillside",
		PeriodStart: time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		StateCounts: map[models.State]int64{models.StatePregnant: 4},
		MilkTotal:   decimal.RequireFromString("812.75"),
		Services:    2,
	}

	doc, err := toDocument(report)
	require.NoError(t, err)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var flat bson.M
	require.NoError(t, bson.Unmarshal(raw, &flat))
	assert.Equal(t, "Hillside", flat["farm_name"])
	assert.Contains(t, flat, "milk_total")
	assert.Contains(t, flat, "state_counts")

	var decoded reportDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	back := fromDocument(decoded)
	assert.True(t, back.MilkTotal.Equal(report.MilkTotal))
	assert.EqualValues(t, 4, back.StateCounts[models.StatePregnant])
	assert.True(t, back.PeriodEnd.Equal(report.PeriodEnd))
}
