package archive

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qrcampaign/fulfillment/internal/domain/fulfillment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummary(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-4000-8000-000000000001")
	order := &fulfillment.OrderView{
		ID:        id,
		Quantity:  2,
		Total:     decimal.RequireFromString("10"),
		Status:    "PAID",
		CreatedAt: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	rows := []fulfillment.SummaryRow{
		fulfillment.NewSummaryRow(id, order, &fulfillment.UserView{Email: "a@b.co"}, &fulfillment.QrCodeView{Name: "Menu, large"}),
		fulfillment.NewSummaryRow(uuid.MustParse("ffffffff-0000-4000-8000-000000000002"), nil, nil, nil),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, fulfillment.SummaryHeader, records[0])
	assert.Equal(t, []string{"A1B2C3D4", "a@b.co", "Menu, large", "2", "10.00", "PAID", "2024-01-31"}, records[1])
	assert.Equal(t, []string{"FFFFFFFF", "N/A", "N/A", "N/A", "N/A", "N/A", "N/A"}, records[2])
}

func TestWriteSummary_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, nil))
	assert.Equal(t, "OrderNumber,CustomerEmail,QrCodeName,Quantity,Total,Status,Date\n", buf.String())
}

func TestBundler_AddSummary(t *testing.T) {
	var buf bytes.Buffer
	b := NewBundler(&buf)
	require.NoError(t, b.AddSummary(nil, time.Time{}))
	require.NoError(t, b.Close())

	entries := readZip(t, buf.Bytes())
	require.Len(t, entries, 1)
	assert.Equal(t, "OrderNumber,CustomerEmail,QrCodeName,Quantity,Total,Status,Date\n", string(entries[SummaryEntry]))
}
