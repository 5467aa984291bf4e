package server

import (
	"fmt"
	"strings"

	"github.com/bascanada/proposalviewer/pkg/proposal"
)

// validateFilterRequest checks the request shape. Inline records take
// precedence over document. Filter text is never rejected.
func validateFilterRequest(req *FilterRequest, kind proposal.RecordKind) error {
	inline := req.Projects != nil
	other := req.Team != nil
	if kind == proposal.KindTeam {
		inline, other = other, inline
	}

	if other {
		return fmt.Errorf("%s records cannot be filtered by the %s endpoint", otherKind(kind), kind)
	}
	if !inline && strings.TrimSpace(req.Document) == "" {
		return fmt.Errorf("document or inline %s records are required", kind)
	}
	return nil
}

func otherKind(kind proposal.RecordKind) proposal.RecordKind {
	if kind == proposal.KindTeam {
		return proposal.KindProjects
	}
	return proposal.KindTeam
}
