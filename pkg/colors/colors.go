// Package colors maps projects to Google Calendar event colors.
package colors

import (
	"hash/fnv"
	"strconv"
)

const (
	// NoProject is graphite, used for tasks without a project.
	NoProject = "8"
	// event color ids run from 1 (lavender) to 11 (tomato)
	paletteSize = 11
)

// ColorID returns a stable event color id for a project. The same project
// always gets the same color, so nothing needs to be remembered between runs.
func ColorID(project string) string {
	if project == "" {
		return NoProject
	}
	h := fnv.New32a()
	h.Write([]byte(project))
	return strconv.Itoa(int(h.Sum32()%paletteSize) + 1)
}
