package calendar

import (
	"sort"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

const DaysInWeek = 7

// CellStatus классификация ячейки недельной сетки
type CellStatus string

const (
	CellUnavailable    CellStatus = "unavailable"      // Учитель не выставлял время
	CellBooked         CellStatus = "booked"           // Запись есть, но не available
	CellTooClose       CellStatus = "too_close"        // Не проходит отсечку
	CellOtherPartyBusy CellStatus = "other_party_busy" // У второй стороны уже есть урок
	CellSelectable     CellStatus = "selectable"
	CellSelected       CellStatus = "selected"
)

// AllCellStatuses в порядке приоритета классификации
var AllCellStatuses = []CellStatus{
	CellUnavailable,
	CellBooked,
	CellTooClose,
	CellOtherPartyBusy,
	CellSelected,
	CellSelectable,
}

// WeekCursor смещение недели относительно текущей. Навигация не делает I/O
// и не сбрасывает загруженные данные, перезагрузка на стороне вызывающего.
type WeekCursor struct {
	Offset int
}

func (c WeekCursor) Next() WeekCursor     { return WeekCursor{Offset: c.Offset + 1} }
func (c WeekCursor) Previous() WeekCursor { return WeekCursor{Offset: c.Offset - 1} }
func (c WeekCursor) Current() WeekCursor  { return WeekCursor{} }

// Start понедельник 00:00 нужной недели в часовом поясе now
func (c WeekCursor) Start(now time.Time) time.Time {
	return WeekStart(now, c.Offset)
}

// WeekStart понедельник недели now, сдвинутый на offset недель
func WeekStart(now time.Time, offset int) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Sunday = 0, поэтому считаем дни от понедельника по модулю
	daysSinceMonday := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -daysSinceMonday)

	return monday.AddDate(0, 0, offset*DaysInWeek)
}

// DistinctSlots оставляет по одному слоту на каждое время начала, по возрастанию.
// Слоты с некорректным временем пропускаются.
func DistinctSlots(slots []model.TimeSlot) []model.TimeSlot {
	seen := make(map[string]struct{}, len(slots))
	result := make([]model.TimeSlot, 0, len(slots))

	for _, s := range slots {
		start, ok := NormalizeClock(s.StartTime)
		if !ok {
			continue
		}
		if _, dup := seen[start]; dup {
			continue
		}
		seen[start] = struct{}{}

		s.StartTime = start
		result = append(result, s)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartTime < result[j].StartTime
	})

	return result
}

// WeekQuery снимок данных для проекции недели
type WeekQuery struct {
	Now        time.Time
	WeekOffset int
	Slots      []model.TimeSlot

	// Записи Availability учителя
	Availabilities []*model.Availability
	// Занятость второй стороны
	Busy                   BusyIndex
	SelectedAvailabilityID *int64
	Role                   model.InitiatorRole
	Policy                 CutoffPolicy
}

type Cell struct {
	Date         time.Time           `json:"date"`
	Slot         model.TimeSlot      `json:"slot"`
	Status       CellStatus          `json:"status"`
	Availability *model.Availability `json:"availability,omitempty"`
}

// WeekGrid сетка 7×N: Cells[день][слот]
type WeekGrid struct {
	WeekOffset int                   `json:"week_offset"`
	Start      time.Time             `json:"start"`
	Days       [DaysInWeek]time.Time `json:"days"`
	Slots      []model.TimeSlot      `json:"slots"`
	Cells      [DaysInWeek][]Cell    `json:"cells"`
}

// ProjectWeek классифицирует каждую ячейку недели
func ProjectWeek(q WeekQuery) *WeekGrid {
	start := WeekStart(q.Now, q.WeekOffset)
	slots := DistinctSlots(q.Slots)
	index := newCellIndex(q.Availabilities, slots)

	grid := &WeekGrid{
		WeekOffset: q.WeekOffset,
		Start:      start,
		Slots:      slots,
	}

	for d := 0; d < DaysInWeek; d++ {
		day := start.AddDate(0, 0, d)
		grid.Days[d] = day

		row := make([]Cell, 0, len(slots))
		for _, slot := range slots {
			row = append(row, q.classify(day, slot, index.lookup(day, slot.StartTime)))
		}
		grid.Cells[d] = row
	}

	return grid
}

// ClassifyCell классифицирует одну ячейку (day, slot)
func ClassifyCell(q WeekQuery, day time.Time, slot model.TimeSlot) Cell {
	rows := DistinctSlots(append(append([]model.TimeSlot(nil), q.Slots...), slot))
	index := newCellIndex(q.Availabilities, rows)
	return q.classify(day, slot, index.lookup(day, slot.StartTime))
}

// classify порядок проверок менять нельзя: от него зависит,
// какую причину блокировки увидит пользователь
func (q WeekQuery) classify(day time.Time, slot model.TimeSlot, a *model.Availability) Cell {
	cell := Cell{Date: day, Slot: slot, Availability: a}

	switch {
	case a == nil:
		cell.Status = CellUnavailable
	case !a.IsAvailable():
		cell.Status = CellBooked
	case !q.Policy.IsEligible(a.StartDate, q.Now, q.Role):
		cell.Status = CellTooClose
	case q.Busy.IsBusy(day, slot.StartTime):
		cell.Status = CellOtherPartyBusy
	case q.SelectedAvailabilityID != nil && *q.SelectedAvailabilityID == a.ID:
		cell.Status = CellSelected
	default:
		cell.Status = CellSelectable
	}

	return cell
}

// Cell возвращает ячейку по индексу дня и слота
func (g *WeekGrid) Cell(day, slot int) (Cell, bool) {
	if day < 0 || day >= DaysInWeek || slot < 0 || slot >= len(g.Cells[day]) {
		return Cell{}, false
	}
	return g.Cells[day][slot], true
}

// Find ищет ячейку по ID записи Availability
func (g *WeekGrid) Find(availabilityID int64) (Cell, bool) {
	for d := range g.Cells {
		for _, c := range g.Cells[d] {
			if c.Availability != nil && c.Availability.ID == availabilityID {
				return c, true
			}
		}
	}
	return Cell{}, false
}

// Counts количество ячеек по статусам
func (g *WeekGrid) Counts() map[CellStatus]int {
	counts := make(map[CellStatus]int, len(AllCellStatuses))
	for d := range g.Cells {
		for _, c := range g.Cells[d] {
			counts[c.Status]++
		}
	}
	return counts
}

// cellIndex записи Availability по (дата, время начала строки)
type cellIndex map[string][]*model.Availability

// newCellIndex раскладывает записи по строкам rows (отсортированы по времени).
// Запись, чьё время не совпадает ни с одной строкой, попадает в первую строку
// того же часа, как и в ключе сетки.
func newCellIndex(avails []*model.Availability, rows []model.TimeSlot) cellIndex {
	rowStarts := make(map[string]struct{}, len(rows))
	hourRows := make(map[int]string, len(rows))
	for _, r := range rows {
		rowStarts[r.StartTime] = struct{}{}
		if clock, ok := parseClock(r.StartTime); ok {
			if _, seen := hourRows[clock.Hour()]; !seen {
				hourRows[clock.Hour()] = r.StartTime
			}
		}
	}

	index := make(cellIndex, len(avails))
	for _, a := range avails {
		if a == nil || a.StartDate.IsZero() {
			continue
		}
		start, ok := NormalizeClock(SlotStart(a))
		if !ok {
			continue
		}
		if _, isRow := rowStarts[start]; !isRow {
			clock, _ := parseClock(start)
			row, found := hourRows[clock.Hour()]
			if !found {
				continue
			}
			start = row
		}
		k := cellKey(a.StartDate, start)
		index[k] = append(index[k], a)
	}
	return index
}

// lookup при нескольких записях в ячейке предпочитает available
func (idx cellIndex) lookup(day time.Time, startTime string) *model.Availability {
	start, ok := NormalizeClock(startTime)
	if !ok {
		return nil
	}

	candidates := idx[cellKey(day, start)]
	if len(candidates) == 0 {
		return nil
	}

	for _, a := range candidates {
		if a.IsAvailable() {
			return a
		}
	}
	return candidates[0]
}

func cellKey(day time.Time, start string) string {
	return day.Format(dateLayout) + "|" + start
}
