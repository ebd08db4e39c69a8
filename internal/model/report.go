package model

import "path"

// NoYear groups files whose names carry no recognizable year.
const NoYear = "no_year"

// Report accumulates the results of a sorting session. Categories keep
// their first-seen order so output is stable across a run.
type Report struct {
	files      map[string][]string
	categories []string
	Skipped    int
	Failed     int
	Unverified int
}

// NewReport creates an empty session report.
func NewReport() *Report {
	return &Report{files: make(map[string][]string)}
}

// Add records a relocated file under its category. Files with a year are
// listed as "YYYY/filename", files without one by bare filename.
func (r *Report) Add(category, year, filename string) {
	if _, ok := r.files[category]; !ok {
		r.categories = append(r.categories, category)
	}
	entry := filename
	if year != "" && year != NoYear {
		entry = path.Join(year, filename)
	}
	r.files[category] = append(r.files[category], entry)
}

// Categories returns the categories that received files, in first-seen order.
func (r *Report) Categories() []string {
	return r.categories
}

// Files returns the relocated filenames recorded under a category.
func (r *Report) Files(category string) []string {
	return r.files[category]
}

// Moved returns the total number of relocated files.
func (r *Report) Moved() int {
	n := 0
	for _, fs := range r.files {
		n += len(fs)
	}
	return n
}

// Empty reports whether no files were moved.
func (r *Report) Empty() bool {
	return len(r.files) == 0
}
