package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"dynasty-bot/internal/service"

	"github.com/google/uuid"
)

const (
	acceptOfferPrefix = "accept-offer_"
	week15Prefix      = "week15_"
)

var streamLink = regexp.MustCompile(`(?i)https?://(www\.)?(youtube\.com|youtu\.be|twitch\.tv)/`)

func hasStreamLink(content string) bool {
	return streamLink.MatchString(content)
}

// acceptOfferID is accept-offer_<guild>_<team>.
func acceptOfferID(guildID string, teamID int64) string {
	return fmt.Sprintf("%s%s_%d", acceptOfferPrefix, guildID, teamID)
}

func parseAcceptOfferID(id string) (guildID string, teamID int64, ok bool) {
	rest, found := strings.CutPrefix(id, acceptOfferPrefix)
	if !found {
		return "", 0, false
	}
	guildID, team, found := strings.Cut(rest, "_")
	if !found || guildID == "" {
		return "", 0, false
	}
	teamID, err := strconv.ParseInt(team, 10, 64)
	if err != nil || teamID <= 0 {
		return "", 0, false
	}
	return guildID, teamID, true
}

func week15ID(promptID string, choice service.Week15Choice) string {
	action := "continue"
	if choice == service.Week15Skip {
		action = "skip"
	}
	return week15Prefix + promptID + "_" + action
}

func parseWeek15ID(id string) (promptID string, choice service.Week15Choice, ok bool) {
	rest, found := strings.CutPrefix(id, week15Prefix)
	if !found {
		return "", 0, false
	}
	i := strings.LastIndex(rest, "_")
	if i <= 0 {
		return "", 0, false
	}
	switch rest[i+1:] {
	case "continue":
		return rest[:i], service.Week15Continue, true
	case "skip":
		return rest[:i], service.Week15Skip, true
	}
	return "", 0, false
}

type week15Prompt struct {
	userID string
	answer chan service.Week15Choice
}

// prompts tracks Week 15 questions waiting on a button press.
type prompts struct {
	mu      sync.Mutex
	pending map[string]week15Prompt
}

func newPrompts() *prompts {
	return &prompts{pending: make(map[string]week15Prompt)}
}

func (p *prompts) open(userID string) (string, <-chan service.Week15Choice) {
	id := uuid.NewString()
	ch := make(chan service.Week15Choice, 1)
	p.mu.Lock()
	p.pending[id] = week15Prompt{userID: userID, answer: ch}
	p.mu.Unlock()
	return id, ch
}

// resolve delivers choice to prompt id. Only the admin who ran the advance
// may answer, and only once.
func (p *prompts) resolve(id, userID string, choice service.Week15Choice) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	pr, ok := p.pending[id]
	if !ok || pr.userID != userID {
		return false
	}
	delete(p.pending, id)
	pr.answer <- choice
	return true
}

func (p *prompts) close(id string) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}

func (p *prompts) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
