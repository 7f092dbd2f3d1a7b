package prediction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"bustime.org/internal/dataset"
)

const tripsCSV = `bus,crowd,traffic,user_experience,stop1_time,stop2_time,stop3_time,stop4_time
12,High,Low,Good,08:00,08:07,08:15,08:20
12,Medium,High,Bad,09:00,,09:20,09:31
7,Low,Low,Average,10:00,10:05,10:12,10:20
12,Low,Medium,Good,nan,11:10,11:18,11:30
`

func testTable(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.ReadCSV("singapore", strings.NewReader(tripsCSV))
	require.NoError(t, err)
	return table
}
