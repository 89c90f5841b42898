package scheduler

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/courtsphere/courtsphere-api/config"
	"github.com/courtsphere/courtsphere-api/databases"
	"github.com/courtsphere/courtsphere-api/models"
	templates "github.com/courtsphere/courtsphere-api/templates/html"
)

// pendingPaymentAge is how long a payment may sit unverified before it
// shows up in the daily reminder to the finance desk.
const pendingPaymentAge = 7 * 24 * time.Hour

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron   *cron.Cron
	PDB    databases.PaymentDatabase
	CDB    databases.CaseDatabase
	UDB    databases.UserDatabase
	Config config.Config
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	pDB databases.PaymentDatabase,
	cDB databases.CaseDatabase,
	uDB databases.UserDatabase,
	conf config.Config,
) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		PDB:    pDB,
		CDB:    cDB,
		UDB:    uDB,
		Config: conf,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Remind the finance desk about stale pending payments daily at 8 AM UTC
	_, err := s.cron.AddFunc("0 8 * * *", s.remindPendingPayments)
	if err != nil {
		zap.S().Errorw("failed to register pending payment reminder job", "error", err)
	}

	// Log caseload statistics daily at 2 AM UTC
	_, err = s.cron.AddFunc("0 2 * * *", s.logCaseloadStats)
	if err != nil {
		zap.S().Errorw("failed to register caseload stats job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("CourtSphere scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("CourtSphere scheduler stopped")
}

// remindPendingPayments emails the finance desk a digest of payments that
// have been waiting for verification longer than pendingPaymentAge.
func (s *Scheduler) remindPendingPayments() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-pendingPaymentAge))
	pending, err := s.PDB.Find(ctx, bson.M{
		"status":    models.PaymentStatusWaiting,
		"createdAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		zap.S().Errorw("failed to find stale pending payments", "error", err)
		return
	}
	if len(pending) == 0 {
		zap.S().Debug("No stale pending payments, skipping reminder")
		return
	}

	if s.Config.FinanceEmail == "" {
		zap.S().Warnw("finance email is not configured, skipping pending payment reminder",
			"pendingPayments", len(pending),
		)
		return
	}

	var lines []string
	var total float64
	for _, p := range pending {
		caseNumber := "unknown case"
		if courtCase, err := s.CDB.FindOne(ctx, bson.M{"_id": p.Case}); err == nil {
			caseNumber = courtCase.CaseNumber
		}
		lines = append(lines, fmt.Sprintf("%s | %s | %.2f | submitted %s",
			p.TransactionID, caseNumber, p.Amount, p.CreatedAt.Time().Format("2006-01-02")))
		total += p.Amount
	}

	subject := fmt.Sprintf("%d payments awaiting verification", len(pending))
	body := fmt.Sprintf(
		"The following payments have been waiting for verification for more than %d days:\n\n%s\n\nTotal pending amount: %.2f",
		int(pendingPaymentAge.Hours()/24),
		strings.Join(lines, "\n"),
		total,
	)

	if err := s.sendEmail(s.Config.FinanceEmail, "Finance Desk", subject,
		templates.RenderGenericEmail(subject, body), body); err != nil {
		zap.S().Errorw("failed to send pending payment reminder email", "error", err)
		return
	}

	zap.S().Infow("Sent pending payment reminder",
		"pendingPayments", len(pending),
		"totalAmount", total,
	)
}

// logCaseloadStats logs a daily snapshot of the caseload by status.
func (s *Scheduler) logCaseloadStats() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	buckets, err := s.CDB.CountByStatus(ctx)
	if err != nil {
		zap.S().Errorw("failed to count cases by status", "error", err)
		return
	}
	counts := make(map[models.CaseStatus]int64, len(buckets))
	for _, b := range buckets {
		counts[b.Status] = b.Count
	}

	unassigned, err := s.CDB.CountDocuments(ctx, bson.M{
		"status":              models.CaseStatusOngoing,
		"lawyerRequestStatus": models.LawyerRequestPending,
	})
	if err != nil {
		zap.S().Errorw("failed to count unassigned cases", "error", err)
		return
	}

	zap.S().Infow("Daily caseload snapshot",
		"ongoing", counts[models.CaseStatusOngoing],
		"dismissed", counts[models.CaseStatusDismissed],
		"judgementGiven", counts[models.CaseStatusJudgementGiven],
		"awaitingLawyer", unassigned,
	)
}

func (s *Scheduler) sendEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	fromEmail := s.Config.FromEmail
	if fromEmail == "" {
		fromEmail = "no-reply@courtsphere.example.com"
	}
	from := mail.NewEmail("CourtSphere", fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}
