package handlers

import "net/http"

// API bundles the handlers served under /api/.
type API struct {
	Session      *SessionHandler
	Transactions *TransactionHandler
	Uploads      *UploadHandler
	Journal      *JournalHandler
	Insights     *InsightHandler
	Privacy      *PrivacyHandler
}

// Routes registers every endpoint on a new mux. Anything touching user
// records goes through AuthMiddleware.
func (a *API) Routes() *http.ServeMux {
	apiRouter := http.NewServeMux()
	auth := a.Session.AuthMiddleware

	apiRouter.HandleFunc("POST /api/session/unlock", a.Session.HandleUnlock)
	apiRouter.HandleFunc("GET /api/biases/catalog", a.Insights.HandleGetBiasCatalog)

	apiRouter.HandleFunc("POST /api/session/lock", auth(a.Session.HandleLock))

	apiRouter.HandleFunc("GET /api/transactions", auth(a.Transactions.HandleListTransactions))
	apiRouter.HandleFunc("POST /api/transactions", auth(a.Transactions.HandleAddTransaction))
	apiRouter.HandleFunc("PUT /api/transactions/{id}", auth(a.Transactions.HandleUpdateTransaction))
	apiRouter.HandleFunc("DELETE /api/transactions/{id}", auth(a.Transactions.HandleDeleteTransaction))
	apiRouter.HandleFunc("POST /api/transactions/import", auth(a.Uploads.HandleImport))

	apiRouter.HandleFunc("GET /api/snapshots", auth(a.Journal.HandleListSnapshots))
	apiRouter.HandleFunc("POST /api/snapshots", auth(a.Journal.HandleAddSnapshot))
	apiRouter.HandleFunc("GET /api/emotions", auth(a.Journal.HandleListEmotions))
	apiRouter.HandleFunc("POST /api/emotions", auth(a.Journal.HandleAddEmotion))

	apiRouter.HandleFunc("GET /api/insights", auth(a.Insights.HandleGetInsights))
	apiRouter.HandleFunc("GET /api/biases", auth(a.Insights.HandleGetBiases))
	apiRouter.HandleFunc("GET /api/micro-insights", auth(a.Insights.HandleGetMicroInsights))

	apiRouter.HandleFunc("GET /api/privacy/incognito", auth(a.Privacy.HandleGetIncognito))
	apiRouter.HandleFunc("POST /api/privacy/incognito", auth(a.Privacy.HandleSetIncognito))
	apiRouter.HandleFunc("DELETE /api/data", auth(a.Privacy.HandleDeleteData))

	return apiRouter
}
