package jalali

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromGregorian(t *testing.T) {
	cases := []struct {
		gy, gm, gd int
		want       Date
	}{
		{2023, 3, 21, Date{1402, 1, 1}},
		{2024, 3, 20, Date{1403, 1, 1}},
		{1979, 2, 11, Date{1357, 11, 22}},
		{2025, 3, 20, Date{1403, 12, 30}},
		{2024, 12, 31, Date{1403, 10, 11}},
		{2000, 2, 29, Date{1378, 12, 10}},
	}
	for _, tc := range cases {
		got := FromGregorian(tc.gy, tc.gm, tc.gd)
		assert.Equal(t, tc.want, got, "%d-%02d-%02d", tc.gy, tc.gm, tc.gd)

		gy, gm, gd := got.Gregorian()
		assert.Equal(t, []int{tc.gy, tc.gm, tc.gd}, []int{gy, gm, gd})
	}
}

func TestFromTimeUsesCalendarDay(t *testing.T) {
	ts := time.Date(2023, time.March, 21, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "1402/01/01", FromTime(ts).String())
}

func TestValidLeapEsfand(t *testing.T) {
	assert.True(t, Date{1403, 12, 30}.Valid())
	assert.False(t, Date{1402, 12, 30}.Valid())
	assert.False(t, Date{1402, 7, 31}.Valid())
	assert.False(t, Date{1402, 13, 1}.Valid())
	assert.True(t, Date{1402, 6, 31}.Valid())
}

func TestParse(t *testing.T) {
	d, err := Parse("1402/01/15")
	require.NoError(t, err)
	assert.Equal(t, Date{1402, 1, 15}, d)
	assert.Equal(t, time.Date(2023, time.April, 4, 0, 0, 0, 0, time.UTC), d.Time())

	_, err = Parse("1402/12/30")
	assert.Error(t, err)
	_, err = Parse("yesterday")
	assert.Error(t, err)
	_, err = Parse("1402/01")
	assert.Error(t, err)

	// Gregorian years are not Jalali years
	_, err = Parse("2024/03/15")
	assert.Error(t, err)
	_, err = Parse("0999/01/01")
	assert.Error(t, err)
}
