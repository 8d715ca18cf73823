package http

import (
	"net/http"

	authmw "spendify/internal/middleware/auth"
)

// maxMultipartMemory bounds the in-memory part of multipart parsing; larger
// files spill to temp storage.
const maxMultipartMemory = 4 << 20

func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	session, _ := authmw.SessionFromContext(r.Context())

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "malformed multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	url, err := s.receiptStore.Save(r.Context(), session.UserID,
		header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"receipt_url": url})
}
