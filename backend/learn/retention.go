package learn

// SuggestedOutlineCap is the maximum size of the suggestion feed. Only
// suggested outlines count against it.
const SuggestedOutlineCap = 9

// CleanupSuggested deletes suggested outlines beyond the cap, oldest
// first by createdAt. It is a pure function of current state: with the
// feed at or under the cap it does nothing, and it never touches
// saved, started or terminal outlines. Returns how many were removed.
func (e *Engine) CleanupSuggested() int {
	suggested := e.store.SuggestedOutlines(0)
	if len(suggested) <= SuggestedOutlineCap {
		return 0
	}

	excess := suggested[SuggestedOutlineCap:]
	ids := make([]string, 0, len(excess))
	for _, o := range excess {
		ids = append(ids, o.ID)
	}
	e.store.DeleteOutlines(ids)
	return len(ids)
}
