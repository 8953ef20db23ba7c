package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeBlocksAreOrderedAndDisjoint(t *testing.T) {
	blocks := TimeBlocks()
	require.Len(t, blocks, 6)
	for i, b := range blocks {
		assert.Less(t, b.Start(), b.End(), b)
		if i > 0 {
			assert.LessOrEqual(t, blocks[i-1].End(), b.Start(), "%s overlaps %s", blocks[i-1], b)
		}
	}
	assert.Equal(t, "08:00", BlockMorning1.Start().String())
	assert.Equal(t, "22:30", BlockNight2.End().String())
}

func TestTimeBlocksReturnsCopy(t *testing.T) {
	blocks := TimeBlocks()
	blocks[0] = BlockNight2
	assert.Equal(t, BlockMorning1, TimeBlocks()[0])
}

func TestNewDayBlockSetNormalises(t *testing.T) {
	set, err := NewDayBlockSet(
		DayBlock{Wednesday, BlockMorning1},
		DayBlock{Monday, BlockNight1},
		DayBlock{Monday, BlockMorning1},
		DayBlock{Wednesday, BlockMorning1},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, "MONDAY:MORNING_1,MONDAY:NIGHT_1,WEDNESDAY:MORNING_1", set.String())
	assert.True(t, set.Contains(DayBlock{Monday, BlockNight1}))
	assert.False(t, set.Contains(DayBlock{Tuesday, BlockNight1}))
	assert.Equal(t, []TimeBlock{BlockMorning1, BlockNight1}, set.ByDay()[Monday])
	assert.Equal(t, []Weekday{Monday, Wednesday}, set.Days())
}

func TestNewDayBlockSetRejectsUnknownValues(t *testing.T) {
	_, err := NewDayBlockSet(DayBlock{Weekday("FUNDAY"), BlockMorning1})
	assert.Error(t, err)
	_, err = NewDayBlockSet(DayBlock{Monday, TimeBlock("LUNCH")})
	assert.Error(t, err)
}

func TestDayBlockSetBlocksIsImmutable(t *testing.T) {
	set := MustDayBlockSet(DayBlock{Monday, BlockMorning1})
	blocks := set.Blocks()
	blocks[0].Block = BlockNight2
	assert.True(t, set.Contains(DayBlock{Monday, BlockMorning1}))
}

func TestParseDayBlocks(t *testing.T) {
	set, err := ParseDayBlocks(" monday:morning_1, WEDNESDAY:MORNING_1 ,")
	require.NoError(t, err)
	assert.Equal(t, "MONDAY:MORNING_1,WEDNESDAY:MORNING_1", set.String())

	_, err = ParseDayBlocks("MONDAY")
	assert.Error(t, err)

	empty, err := ParseDayBlocks("")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}

func TestDayBlockSetJSONAndSQL(t *testing.T) {
	set := MustDayBlockSet(DayBlock{Friday, BlockAfternoon2}, DayBlock{Monday, BlockMorning2})

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"day":"MONDAY","block":"MORNING_2"},{"day":"FRIDAY","block":"AFTERNOON_2"}]`, string(data))

	var decoded DayBlockSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, set, decoded)

	value, err := set.Value()
	require.NoError(t, err)
	var scanned DayBlockSet
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, set.String(), scanned.String())

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsEmpty())
	assert.Error(t, scanned.Scan(42))
	assert.Error(t, json.Unmarshal([]byte(`[{"day":"MONDAY","block":"NOON"}]`), &decoded))
}

func TestEmptyDayBlockSetMarshalsAsArray(t *testing.T) {
	data, err := json.Marshal(DayBlockSet{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
