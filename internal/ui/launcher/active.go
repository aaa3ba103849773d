package launcher

import "overtimer/internal/core/model"

// ActiveList is the launcher's view of open timers in the order it heard
// about them.
type ActiveList struct {
	items []model.TimerSummary
}

// Add appends summary unless its instance is already listed.
func (list *ActiveList) Add(summary model.TimerSummary) bool {
	if list.index(summary.InstanceID) >= 0 {
		return false
	}
	list.items = append(list.items, summary)
	return true
}

// Remove drops the instance. It reports whether it was listed.
func (list *ActiveList) Remove(id model.InstanceID) bool {
	index := list.index(id)
	if index < 0 {
		return false
	}
	list.items = append(list.items[:index], list.items[index+1:]...)
	return true
}

// Replace swaps the whole list, keeping the given order.
func (list *ActiveList) Replace(summaries []model.TimerSummary) {
	list.items = list.items[:0]
	for _, summary := range summaries {
		list.Add(summary)
	}
}

// Len returns the number of listed timers.
func (list *ActiveList) Len() int {
	return len(list.items)
}

// At returns the entry at index, or false when out of range.
func (list *ActiveList) At(index int) (model.TimerSummary, bool) {
	if index < 0 || index >= len(list.items) {
		return model.TimerSummary{}, false
	}
	return list.items[index], true
}

func (list *ActiveList) index(id model.InstanceID) int {
	for i, item := range list.items {
		if item.InstanceID == id {
			return i
		}
	}
	return -1
}
