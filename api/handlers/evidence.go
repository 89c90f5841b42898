package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/courtsphere/courtsphere-api/api"
	"github.com/courtsphere/courtsphere-api/config"
	"github.com/courtsphere/courtsphere-api/databases"
	"github.com/courtsphere/courtsphere-api/models"
	"github.com/courtsphere/courtsphere-api/storage"
)

// maxEvidenceUpload caps the multipart form memory for evidence uploads
const maxEvidenceUpload = 32 << 20 // 32 MB

// Evidence exported for testing purposes
type Evidence struct {
	DB    databases.EvidenceDatabase
	CDB   databases.CaseDatabase
	UDB   databases.UserDatabase
	Store storage.FileStore
}

// UploadEvidenceHandler attaches an uploaded file to a case. The file is
// persisted through the configured file store and only the pointer plus
// metadata is recorded; evidence is immutable once written.
func (e Evidence) UploadEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxEvidenceUpload); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return
	}

	caseID := r.FormValue("caseId")
	bID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("no file uploaded", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := e.CDB.FindOne(ctx, bson.M{"_id": bID}); err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}

	fileURL, err := e.Store.Upload(ctx, file, header.Filename)
	if err != nil {
		config.ErrorStatus("failed to store file", http.StatusInternalServerError, w, err)
		return
	}

	evidence := models.Evidence{
		ID:          primitive.NewObjectID(),
		Case:        bID,
		UploadedBy:  user.ID,
		FileName:    header.Filename,
		FileURL:     fileURL,
		FileType:    header.Header.Get("Content-Type"),
		Description: sanitizer.Sanitize(r.FormValue("description")),
		CreatedAt:   primitive.NewDateTimeFromTime(time.Now()),
	}

	if _, err := e.DB.InsertOne(ctx, evidence); err != nil {
		config.ErrorStatus("failed to create evidence", http.StatusBadRequest, w, err)
		return
	}

	zap.S().Infow("evidence uploaded",
		"case", caseID,
		"fileName", evidence.FileName,
		"uploadedBy", user.UserID,
	)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(evidence)
}

// EvidenceByCaseHandler lists the evidence of a case for involved parties:
// court and superadmin always, otherwise only the complainant, the assigned
// lawyer or a listed involved citizen
func (e Evidence) EvidenceByCaseHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())
	caseID := mux.Vars(r)["case_id"]

	bID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	courtCase, err := e.CDB.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}

	involved := user.Role == models.RoleCourt ||
		user.Role == models.RoleSuperAdmin ||
		courtCase.InvolvesUser(user.ID)
	if !involved {
		config.ErrorStatus("not authorized to view evidence for this case", http.StatusForbidden, w, fmt.Errorf("requester is not an involved party"))
		return
	}

	evidence, err := e.DB.Find(ctx, bson.M{"case": bID})
	if err != nil {
		config.ErrorStatus("failed to get evidence", http.StatusNotFound, w, err)
		return
	}

	views := make([]models.EvidenceView, 0, len(evidence))
	for _, ev := range evidence {
		view := models.EvidenceView{Evidence: ev}
		if uploader, err := e.UDB.FindOne(ctx, bson.M{"_id": ev.UploadedBy}); err == nil {
			view.Uploader = uploader
		}
		views = append(views, view)
	}

	b, err := json.Marshal(views)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SignatureHandler generates a signature for direct Cloudinary uploads
func (e Evidence) SignatureHandler(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	response := map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
