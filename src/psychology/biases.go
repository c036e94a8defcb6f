// Package psychology holds the read-only reference data the detection and
// insight engines consult: the bias catalog, reference prices, category sets
// and message pools.
package psychology

const (
	BiasAnchoring       = "anchoring"
	BiasLossAversion    = "loss_aversion"
	BiasPresentBias     = "present_bias"
	BiasConfirmation    = "confirmation_bias"
	BiasEndowmentEffect = "endowment_effect"
)

// Bias is one catalogued cognitive bias.
type Bias struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	FinancialTrap  string `json:"financialTrap"`
	Countermeasure string `json:"countermeasure"`
}

var biasCatalog = []Bias{
	{
		ID:             BiasAnchoring,
		Name:           "Biais d'ancrage",
		Description:    "Le premier prix vu sert de référence et fausse l'évaluation des suivants.",
		FinancialTrap:  "Accepter un prix « barré » comme une bonne affaire sans le comparer.",
		Countermeasure: "Comparer au moins trois prix avant un achat important.",
	},
	{
		ID:             BiasLossAversion,
		Name:           "Aversion à la perte",
		Description:    "Une perte pèse environ deux fois plus lourd qu'un gain équivalent.",
		FinancialTrap:  "Laisser dormir son épargne par peur de toute fluctuation.",
		Countermeasure: "Raisonner sur l'horizon de placement plutôt que sur les variations courtes.",
	},
	{
		ID:             BiasPresentBias,
		Name:           "Biais du présent",
		Description:    "La satisfaction immédiate est préférée à un bénéfice futur plus grand.",
		FinancialTrap:  "Reporter l'épargne au mois prochain, chaque mois.",
		Countermeasure: "Automatiser un virement d'épargne le jour de la paie.",
	},
	{
		ID:             BiasConfirmation,
		Name:           "Biais de confirmation",
		Description:    "On retient les informations qui confortent ce que l'on croit déjà.",
		FinancialTrap:  "Ne lire que les avis positifs sur un placement déjà choisi.",
		Countermeasure: "Chercher activement un avis contraire avant de décider.",
	},
	{
		ID:             BiasEndowmentEffect,
		Name:           "Effet de dotation",
		Description:    "On surévalue ce que l'on possède déjà.",
		FinancialTrap:  "Garder un abonnement inutile parce qu'on l'a toujours eu.",
		Countermeasure: "Se demander si on l'achèterait aujourd'hui à ce prix.",
	},
}

// Biases returns a copy of the catalog in its fixed order.
func Biases() []Bias {
	out := make([]Bias, len(biasCatalog))
	copy(out, biasCatalog)
	return out
}

// LookupBias finds a catalog entry by id.
func LookupBias(id string) (Bias, bool) {
	for _, b := range biasCatalog {
		if b.ID == id {
			return b, true
		}
	}
	return Bias{}, false
}
