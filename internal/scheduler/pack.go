package scheduler

import (
	"fmt"
	"time"

	"github.com/julianstephens/taskflow/internal/constants"
	apperrors "github.com/julianstephens/taskflow/internal/errors"
	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/utils"
)

// PackDays walks days calendar days from start and fills each enabled
// day's slots with blocks in order. One cursor is shared across days, so
// blocks are never skipped, reordered or split. It returns the day
// schedules and the number of blocks placed.
func (s *Scheduler) PackDays(start time.Time, days int, schedule models.WorkSchedule, blocks []models.TaskBlock) ([]models.DaySchedule, int, error) {
	result := []models.DaySchedule{}
	cursor := 0
	first := utils.StartOfDay(start)

	for i := 0; i < days; i++ {
		date := first.AddDate(0, 0, i)
		window, ok := schedule.For(date.Weekday())
		if !ok || !window.Enabled {
			continue
		}

		startHour, count, err := SlotCount(window)
		if err != nil {
			return nil, 0, apperrors.Validation("workSchedule."+models.WeekdayKey(date.Weekday()), "%v", err)
		}

		day := models.DaySchedule{
			Date:    date.Format(constants.DateFormat),
			DayName: date.Weekday().String(),
			Slots:   make([]models.Slot, 0, count),
		}

		for k := 0; k < count; k++ {
			slotStart := startHour + k*constants.BlockHours
			label := fmt.Sprintf(constants.SlotTimeFormat, slotStart, slotStart+constants.BlockHours)

			if cursor < len(blocks) {
				day.Slots = append(day.Slots, filledSlot(label, blocks[cursor]))
				cursor++
			} else {
				day.Slots = append(day.Slots, openSlot(label))
			}
		}

		result = append(result, day)
	}

	return result, cursor, nil
}

// SlotCount returns the first slot hour and the number of whole blocks a
// window holds. Only the hour components count, so 09:00-16:30 gives 3
// slots; a window ending before it starts gives none.
func SlotCount(window models.WorkWindow) (startHour, count int, err error) {
	startHour, err = utils.ParseHour(window.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start time %q: %w", window.Start, err)
	}
	endHour, err := utils.ParseHour(window.End)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end time %q: %w", window.End, err)
	}

	span := endHour - startHour
	if span < 0 {
		return startHour, 0, nil
	}
	return startHour, span / constants.BlockHours, nil
}

func filledSlot(label string, block models.TaskBlock) models.Slot {
	taskID := block.TaskID
	project := block.ProjectName
	priority := block.Priority
	category := block.Category
	info := fmt.Sprintf(constants.BlockInfoFormat, block.BlockNumber, block.TotalBlocks)
	hours := block.EstimatedHours

	return models.Slot{
		Time:           label,
		Task:           block.TaskName,
		TaskID:         &taskID,
		Project:        &project,
		Priority:       &priority,
		Category:       &category,
		BlockInfo:      &info,
		IsSequential:   block.IsSequential,
		TaskOrder:      block.TaskOrder,
		EstimatedHours: &hours,
	}
}

func openSlot(label string) models.Slot {
	return models.Slot{
		Time: label,
		Task: constants.OpenSlotLabel,
	}
}
