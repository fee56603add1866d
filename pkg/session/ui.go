package session

import (
	"sync"

	"github.com/yair/localgeo/pkg/domain"
)

type Section string

const (
	SectionExplore  Section = "explore"
	SectionMyTravel Section = "mytravel"
)

// UIState tracks which top-level section is active.
type UIState struct {
	mu      sync.RWMutex
	section Section
}

func NewUIState() *UIState {
	return &UIState{section: SectionExplore}
}

func (u *UIState) Section() Section {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.section
}

func (u *UIState) SetSection(s Section) error {
	if s != SectionExplore && s != SectionMyTravel {
		return domain.ValidationError{Field: "section", Message: "section must be explore or mytravel"}
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.section = s
	return nil
}
