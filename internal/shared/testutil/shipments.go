// Package testutil provides fixtures and assertions shared by package tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"shiprisk/pkg/contracts/domain"
)

var (
	routes   = []string{"Air", "Land", "Sea"}
	modes    = []string{"Plane", "Rail", "Ship", "Truck"}
	products = []string{"Apparel", "Electronics", "Food", "Machinery"}
	actions  = []string{"None", "Reroute", "Expedite"}
	events   = []string{"None", "Storm", "Strike"}
)

// IsOnTime reports the label WriteShipments gives to row i
func IsOnTime(i int) bool {
	return (i*7)%10 < 6
}

// ShipmentRecords builds n shipments whose delivery is decided by the
// weather index alone: on-time rows sit in [0, 1.9], late rows in [5, 6.9].
// The geopolitical index stays below 0.5 so the high-risk flag is constant.
// The header row comes first.
func ShipmentRecords(n int) [][]string {
	header := domain.RequiredColumns()
	records := [][]string{header}
	for i := 0; i < n; i++ {
		onTime := 0
		if IsOnTime(i) {
			onTime = 1
		}
		weather := 5 + float64((i*13)%20)/10
		if onTime == 1 {
			weather -= 5
		}
		values := map[string]string{
			domain.ColScheduledLeadTime: fmt.Sprint(10 + i%7),
			domain.ColBaseLeadTime:      fmt.Sprint(5 + (i*3)%5),
			domain.ColOrderWeight:       fmt.Sprint(100 + (i*37)%250),
			domain.ColShippingCost:      fmt.Sprint(500 + (i*53)%900),
			domain.ColGeopoliticalRisk:  fmt.Sprintf("%.2f", 0.1+float64((i*17)%40)/100),
			domain.ColWeatherSeverity:   fmt.Sprintf("%.1f", weather),
			domain.ColDisruption:        fmt.Sprint(i % 2),
			domain.ColRouteType:         routes[(i*5)%3],
			domain.ColTransportMode:     modes[i%4],
			domain.ColProductCategory:   products[(i*3)%4],
			domain.ColMitigationAction:  actions[i%3],
			domain.ColDisruptionEvent:   events[(i/3)%3],
			domain.ColOnTime:            fmt.Sprint(onTime),
		}
		row := make([]string, 0, len(header))
		for _, c := range header {
			row = append(row, values[c])
		}
		records = append(records, row)
	}
	return records
}

// WriteShipments writes ShipmentRecords(n) as CSV into a temp directory and
// appends one fully empty line for the cleaner to drop.
func WriteShipments(t *testing.T, n int) string {
	t.Helper()

	var b strings.Builder
	for _, rec := range ShipmentRecords(n) {
		b.WriteString(strings.Join(rec, ",") + "\n")
	}
	b.WriteString(strings.Repeat(",", len(domain.RequiredColumns())-1) + "\n")

	path := filepath.Join(t.TempDir(), "shipments.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}
