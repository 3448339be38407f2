package handlers

// Leveler renders level and achievement presentation from a user's
// score. The rules live outside the quiz kernel; without a configured
// implementation the handler falls back to score-only text.
type Leveler interface {
	ProfileText(userID, firstName string, score int, lang string) string
	AchievementsText(userID, firstName string, score int, lang string) string
}
