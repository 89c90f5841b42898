package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/courtsphere/courtsphere-api/api"
	"github.com/courtsphere/courtsphere-api/api/handlers/search"
	"github.com/courtsphere/courtsphere-api/api/scheduler"
	"github.com/courtsphere/courtsphere-api/config"
	"github.com/courtsphere/courtsphere-api/databases"
	"github.com/courtsphere/courtsphere-api/models"
	"github.com/courtsphere/courtsphere-api/storage"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	userDB := databases.NewUserDatabase(a.dbHelper)
	caseDB := databases.NewCaseDatabase(a.dbHelper)
	paymentDB := databases.NewPaymentDatabase(a.dbHelper)
	evidenceDB := databases.NewEvidenceDatabase(a.dbHelper)
	summaryDB := databases.NewSummaryDatabase(a.dbHelper)
	sequenceDB := databases.NewSequenceDatabase(a.dbHelper)

	metrics := api.NewMetrics()
	authn := api.Auth{DB: userDB}

	fileStore, err := storage.NewCloudinaryStore()
	if err != nil {
		zap.S().Warnw("cloudinary not configured, storing evidence on local disk", "error", err)
		fileStore, err = storage.NewLocalStore(a.Config.UploadDir)
		if err != nil {
			zap.S().Fatalw("failed to initialize file storage", "error", err)
		}
	}

	auth := Auth{DB: userDB}
	u := User{DB: userDB}
	c := Case{DB: caseDB, UDB: userDB, SEQ: sequenceDB, Metrics: metrics}
	p := Payment{DB: paymentDB, CDB: caseDB, UDB: userDB, Metrics: metrics}
	e := Evidence{DB: evidenceDB, CDB: caseDB, UDB: userDB, Store: fileStore}
	s := Summary{DB: summaryDB, UDB: userDB}
	cs := search.CaseSearch{DB: caseDB}

	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	// protect authenticates the bearer token and checks the permission
	// table once, at the dispatch boundary
	protect := func(op api.Operation, h http.HandlerFunc) http.Handler {
		return authn.Middleware(api.Authorize(op)(h))
	}

	apiCreate.Handle("/auth/login", http.HandlerFunc(auth.LoginHandler)).Methods("POST")
	apiCreate.Handle("/auth/register", http.HandlerFunc(auth.RegisterHandler)).Methods("POST")

	apiCreate.Handle("/cases", protect(api.OpListCases, c.CasesHandler)).Methods("GET")
	apiCreate.Handle("/cases", protect(api.OpRegisterCase, c.CreateCaseHandler)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}", protect(api.OpUpdateCase, c.UpdateCaseHandler)).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/lawyer", protect(api.OpLawyerAction, c.LawyerRequestHandler)).Methods("PUT")
	apiCreate.Handle("/case-search", protect(api.OpListCases, cs.CaseSearchHandler)).Methods("GET")

	apiCreate.Handle("/evidence", protect(api.OpUploadEvidence, e.UploadEvidenceHandler)).Methods("POST")
	apiCreate.Handle("/evidence/signature", protect(api.OpSignEvidence, e.SignatureHandler)).Methods("POST")
	apiCreate.Handle("/evidence/{case_id}", protect(api.OpViewEvidence, e.EvidenceByCaseHandler)).Methods("GET")

	apiCreate.Handle("/payments", protect(api.OpListPayments, p.PaymentsHandler)).Methods("GET")
	apiCreate.Handle("/payments", protect(api.OpCreatePayment, p.CreatePaymentHandler)).Methods("POST")
	apiCreate.Handle("/payments/export", protect(api.OpExportPayments, p.ExportPaymentsHandler)).Methods("GET")
	apiCreate.Handle("/payments/{payment_id}", protect(api.OpVerifyPayment, p.VerifyPaymentHandler)).Methods("PUT")
	apiCreate.Handle("/payments/{payment_id}/checkout-session", protect(api.OpCheckoutSession, p.CheckoutSessionHandler)).Methods("POST")

	apiCreate.Handle("/summary", protect(api.OpUpsertSummary, s.UpsertSummaryHandler)).Methods("POST")
	apiCreate.Handle("/summary/{case_id}", protect(api.OpViewSummary, s.SummaryByCaseHandler)).Methods("GET")

	apiCreate.Handle("/users/profile", protect(api.OpViewProfile, u.ProfileHandler)).Methods("GET")
	apiCreate.Handle("/users/profile", protect(api.OpUpdateProfile, u.UpdateProfileHandler)).Methods("PUT")
	apiCreate.Handle("/users/lawyers", protect(api.OpListLawyers, u.LawyersHandler)).Methods("GET")

	// locally stored evidence served statically
	uploadDir := a.Config.UploadDir
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("courtsphere-api has connected to the database")

	// stripe powers the optional checkout-session flow
	if stripeKey := os.Getenv("STRIPE_SECRET_KEY"); stripeKey != "" {
		stripe.Key = stripeKey
	} else {
		zap.S().Warn("stripe secret key is not set, checkout sessions will fail")
	}

	// initialize api router
	a.initializeRoutes()

	a.Scheduler = scheduler.NewScheduler(
		databases.NewPaymentDatabase(a.dbHelper),
		databases.NewCaseDatabase(a.dbHelper),
		databases.NewUserDatabase(a.dbHelper),
		a.Config,
	)
	a.Scheduler.Start()

	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
	a.Router.Use(api.TimeoutMiddleware(30 * time.Second))
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
