package domain

// Chapter is a publishing category stories are grouped under
type Chapter struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
}

// CreateChapterRequest is the body of POST /story/chapter
type CreateChapterRequest struct {
	Title string `json:"title" binding:"required"`
}

// HomeChapter is one entry of the home page table of contents
type HomeChapter struct {
	Chapter
	Stories []StorySummary `json:"stories"`
}

// GroupByChapter folds the flat /story/home listing into chapters,
// keeping the order in which each chapter first appears.
func GroupByChapter(stories []StorySummary) []HomeChapter {
	index := make(map[string]int)
	var out []HomeChapter
	for _, s := range stories {
		id := s.Chapter.ID
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			out = append(out, HomeChapter{Chapter: s.Chapter})
		}
		out[i].Stories = append(out[i].Stories, s)
	}
	return out
}
