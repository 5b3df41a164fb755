package services

import (
	"fmt"
	"regexp"

	"github.com/stackit/stackit/models"
	"github.com/stackit/stackit/utils"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// mentionQuoteLimit caps how much of the source text a mention notification quotes.
const mentionQuoteLimit = 100

// ExtractMentions returns the @username tokens in text, in order of
// appearance. A token is '@' followed by letters, digits or underscores.
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	mentions := make([]string, 0, len(matches))
	for _, m := range matches {
		mentions = append(mentions, m[1])
	}
	return mentions
}

// NotifyMentions scans text for @username tokens and notifies every user the
// tokens resolve to, once per user no matter how often they are mentioned.
// Unknown usernames are skipped silently. answerID is nil when the text
// belongs to a question description.
func (n *Notifier) NotifyMentions(text string, senderID, questionID uint, answerID *uint) {
	for _, username := range utils.UniqueString(ExtractMentions(text)) {
		var user models.User
		if err := n.db.Where("username = ?", username).First(&user).Error; err != nil {
			continue
		}
		content := fmt.Sprintf("mentioned you: %s...", truncateRunes(text, mentionQuoteLimit))
		link := fmt.Sprintf("/question/%d", questionID)
		n.Notify(user.ID, senderID, models.NotificationTypeMention, content, link, &questionID, answerID)
	}
}

func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
