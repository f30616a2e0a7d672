package storage

import (
	"fmt"

	"github.com/lectern-app/lectern/models"
)

// CalculateResourcePaths generates all available resource URIs for an
// ingested paper, based on the content it actually has.
func CalculateResourcePaths(paperID string, paper *models.Paper) []string {
	resourcePaths := []string{
		fmt.Sprintf("paper://%s", paperID),
		fmt.Sprintf("paper://%s/metadata", paperID),
	}

	if len(paper.Pages) > 0 {
		resourcePaths = append(resourcePaths,
			fmt.Sprintf("paper://%s/pages", paperID),
			fmt.Sprintf("paper://%s/pages/{pageNumber}", paperID),
		)
	}

	if len(paper.Sections) > 0 {
		resourcePaths = append(resourcePaths,
			fmt.Sprintf("paper://%s/sections", paperID),
			fmt.Sprintf("paper://%s/sections/{sectionID}", paperID),
		)
	}

	if len(paper.TextItems) > 0 {
		resourcePaths = append(resourcePaths,
			fmt.Sprintf("paper://%s/pages/{pageNumber}/text-items", paperID),
		)
	}

	resourcePaths = append(resourcePaths,
		fmt.Sprintf("paper://%s/highlights", paperID),
		fmt.Sprintf("paper://%s/translations", paperID),
	)

	return resourcePaths
}
