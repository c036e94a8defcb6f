package psychology

// Quote is an encouragement line shown on the dashboard or goal screens.
type Quote struct {
	ID      string
	Context string
	Text    string
}

var quotePool = []Quote{
	{ID: "fact-small-steps", Context: "dashboard", Text: "Chaque petite économie compte : 2 € par jour font plus de 700 € par an."},
	{ID: "fact-awareness", Context: "dashboard", Text: "Observer ses dépenses sans se juger est déjà un pas vers de meilleures décisions."},
	{ID: "fact-emotions", Context: "dashboard", Text: "Identifier l'émotion derrière un achat aide à reprendre la main."},
	{ID: "fact-goal-progress", Context: "goal", Text: "Un objectif découpé en étapes mensuelles paraît deux fois plus atteignable."},
	{ID: "fact-goal-automation", Context: "goal", Text: "Automatiser son épargne, c'est décider une fois au lieu de résister chaque mois."},
	{ID: "fact-goal-patience", Context: "goal", Text: "Les intérêts composés récompensent surtout la régularité."},
}

// QuotesFor returns the quotes matching a display context, in catalog order.
func QuotesFor(context string) []Quote {
	var out []Quote
	for _, q := range quotePool {
		if q.Context == context {
			out = append(out, q)
		}
	}
	return out
}
