package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Weekday names a day of the week as stored and transmitted.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

var weekdayOrder = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Weekdays returns the seven weekdays starting on Monday.
func Weekdays() []Weekday {
	out := make([]Weekday, len(weekdayOrder))
	copy(out, weekdayOrder)
	return out
}

func (d Weekday) index() int {
	for i, w := range weekdayOrder {
		if w == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the seven weekdays.
func (d Weekday) Valid() bool { return d.index() >= 0 }

// TimeOfDay is minutes since midnight.
type TimeOfDay int

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func clock(h, m int) TimeOfDay { return TimeOfDay(h*60 + m) }

// TimeBlock is one of the six fixed daily teaching periods.
type TimeBlock string

const (
	BlockMorning1   TimeBlock = "MORNING_1"
	BlockMorning2   TimeBlock = "MORNING_2"
	BlockAfternoon1 TimeBlock = "AFTERNOON_1"
	BlockAfternoon2 TimeBlock = "AFTERNOON_2"
	BlockNight1     TimeBlock = "NIGHT_1"
	BlockNight2     TimeBlock = "NIGHT_2"
)

type blockSpan struct {
	label      string
	start, end TimeOfDay
}

// Ordered by start time; spans never overlap.
var timeBlockOrder = []TimeBlock{BlockMorning1, BlockMorning2, BlockAfternoon1, BlockAfternoon2, BlockNight1, BlockNight2}

var timeBlockSpans = map[TimeBlock]blockSpan{
	BlockMorning1:   {"Morning block 1", clock(8, 0), clock(10, 0)},
	BlockMorning2:   {"Morning block 2", clock(10, 15), clock(12, 15)},
	BlockAfternoon1: {"Afternoon block 1", clock(14, 0), clock(16, 0)},
	BlockAfternoon2: {"Afternoon block 2", clock(16, 15), clock(18, 15)},
	BlockNight1:     {"Night block 1", clock(18, 30), clock(20, 30)},
	BlockNight2:     {"Night block 2", clock(20, 30), clock(22, 30)},
}

// TimeBlocks returns the calendar's blocks in chronological order.
func TimeBlocks() []TimeBlock {
	out := make([]TimeBlock, len(timeBlockOrder))
	copy(out, timeBlockOrder)
	return out
}

func (b TimeBlock) index() int {
	for i, tb := range timeBlockOrder {
		if tb == b {
			return i
		}
	}
	return -1
}

// Valid reports whether b belongs to the calendar.
func (b TimeBlock) Valid() bool { return b.index() >= 0 }

// Start returns the block's first minute.
func (b TimeBlock) Start() TimeOfDay { return timeBlockSpans[b].start }

// End returns the minute the block finishes.
func (b TimeBlock) End() TimeOfDay { return timeBlockSpans[b].end }

// Label returns a human readable block name.
func (b TimeBlock) Label() string { return timeBlockSpans[b].label }

// DayBlock is the atomic schedulable unit: one block on one weekday.
type DayBlock struct {
	Day   Weekday   `json:"day"`
	Block TimeBlock `json:"block"`
}

func (d DayBlock) String() string { return string(d.Day) + ":" + string(d.Block) }

func (d DayBlock) validate() error {
	if !d.Day.Valid() {
		return fmt.Errorf("unknown weekday %q", d.Day)
	}
	if !d.Block.Valid() {
		return fmt.Errorf("unknown time block %q", d.Block)
	}
	return nil
}

func (d DayBlock) less(o DayBlock) bool {
	if d.Day != o.Day {
		return d.Day.index() < o.Day.index()
	}
	return d.Block.index() < o.Block.index()
}

// ParseDayBlock parses "MONDAY:MORNING_1". Matching is case-insensitive.
func ParseDayBlock(raw string) (DayBlock, error) {
	day, block, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return DayBlock{}, fmt.Errorf("day block %q must look like DAY:BLOCK", raw)
	}
	db := DayBlock{
		Day:   Weekday(strings.ToUpper(strings.TrimSpace(day))),
		Block: TimeBlock(strings.ToUpper(strings.TrimSpace(block))),
	}
	if err := db.validate(); err != nil {
		return DayBlock{}, err
	}
	return db, nil
}

// DayBlockSet is an immutable, sorted, duplicate-free set of DayBlocks.
// The zero value is the empty set.
type DayBlockSet struct {
	items []DayBlock
}

// NewDayBlockSet validates and normalises the given blocks.
func NewDayBlockSet(blocks ...DayBlock) (DayBlockSet, error) {
	items := make([]DayBlock, 0, len(blocks))
	for _, b := range blocks {
		if err := b.validate(); err != nil {
			return DayBlockSet{}, err
		}
		items = append(items, b)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].less(items[j]) })

	out := items[:0]
	for i, b := range items {
		if i > 0 && b == items[i-1] {
			continue
		}
		out = append(out, b)
	}
	return DayBlockSet{items: out}, nil
}

// MustDayBlockSet is NewDayBlockSet for static inputs; it panics on invalid blocks.
func MustDayBlockSet(blocks ...DayBlock) DayBlockSet {
	set, err := NewDayBlockSet(blocks...)
	if err != nil {
		panic(err)
	}
	return set
}

// ParseDayBlocks parses a comma separated list such as "MONDAY:MORNING_1,WEDNESDAY:MORNING_1".
func ParseDayBlocks(raw string) (DayBlockSet, error) {
	var blocks []DayBlock
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		b, err := ParseDayBlock(part)
		if err != nil {
			return DayBlockSet{}, err
		}
		blocks = append(blocks, b)
	}
	return NewDayBlockSet(blocks...)
}

// Len returns the number of day blocks.
func (s DayBlockSet) Len() int { return len(s.items) }

// IsEmpty reports whether the set holds no blocks.
func (s DayBlockSet) IsEmpty() bool { return len(s.items) == 0 }

// Blocks returns a copy of the members in calendar order.
func (s DayBlockSet) Blocks() []DayBlock {
	out := make([]DayBlock, len(s.items))
	copy(out, s.items)
	return out
}

// Contains reports membership using binary search over the sorted members.
func (s DayBlockSet) Contains(b DayBlock) bool {
	i := sort.Search(len(s.items), func(i int) bool { return !s.items[i].less(b) })
	return i < len(s.items) && s.items[i] == b
}

// Days returns the distinct weekdays in calendar order.
func (s DayBlockSet) Days() []Weekday {
	var out []Weekday
	for _, b := range s.items {
		if n := len(out); n == 0 || out[n-1] != b.Day {
			out = append(out, b.Day)
		}
	}
	return out
}

// ByDay groups blocks per weekday.
func (s DayBlockSet) ByDay() map[Weekday][]TimeBlock {
	out := make(map[Weekday][]TimeBlock)
	for _, b := range s.items {
		out[b.Day] = append(out[b.Day], b.Block)
	}
	return out
}

// String renders the set in the same form ParseDayBlocks accepts.
func (s DayBlockSet) String() string {
	parts := make([]string, len(s.items))
	for i, b := range s.items {
		parts[i] = b.String()
	}
	return strings.Join(parts, ",")
}

// MarshalJSON encodes the set as an array of {day, block} objects.
func (s DayBlockSet) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

// UnmarshalJSON decodes and validates an array of {day, block} objects.
func (s *DayBlockSet) UnmarshalJSON(data []byte) error {
	var raw []DayBlock
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	set, err := NewDayBlockSet(raw...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// Value stores the set as a JSONB array. It is sent as text so lib/pq does
// not encode it as bytea.
func (s DayBlockSet) Value() (driver.Value, error) {
	data, err := s.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal day blocks: %w", err)
	}
	return string(data), nil
}

// Scan loads a JSONB array of day blocks.
func (s *DayBlockSet) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*s = DayBlockSet{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for DayBlockSet", value)
	}
	if len(data) == 0 {
		*s = DayBlockSet{}
		return nil
	}
	if err := s.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("unmarshal day blocks: %w", err)
	}
	return nil
}
