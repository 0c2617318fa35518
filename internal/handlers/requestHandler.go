package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/DocChatAPI/internal/adapter"
	"github.com/akolanti/DocChatAPI/internal/adapter/utils"
	"github.com/akolanti/DocChatAPI/internal/api"
	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/DocChatAPI/internal/orchestrator"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

var logRH *logger_i.Logger

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// CreateSessionHandler godoc
// @Summary      Create a new document chat session
// @Description  Mints a session id that scopes all uploads, queries and history until the session is deleted.
// @Tags         Sessions
// @Produce      json
// @Success      201  {object}  api.SessionResponse  "Session created"
// @Failure      500  {object}  api.ErrorResponse    "Session store unavailable"
// @Router       /session [post]
func CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		session, err := handlerInstance.createSession(r.Context())
		if err != nil {
			logRH.Error("Failed to create session", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not create session")
			return
		}
		writeJsonResponse(w, http.StatusCreated, adapter.ToSessionResponse(session))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// ListSessionsHandler godoc
// @Summary      List sessions
// @Description  Returns every known session with its ingest state.
// @Tags         Sessions
// @Produce      json
// @Success      200  {object}  api.SessionListResponse
// @Failure      500  {object}  api.ErrorResponse  "Session store unavailable"
// @Router       /sessions [get]
func ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		sessions, err := handlerInstance.service.SessionStore.ListSessions(r.Context())
		if err != nil {
			logRH.Error("Failed to list sessions", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not list sessions")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToSessionListResponse(sessions))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// DeleteSessionHandler godoc
// @Summary      Delete a session
// @Description  Drops the session's index, chat history, uploaded files and registry entry. Full deletion is the only way indexed chunks are ever removed.
// @Tags         Sessions
// @Produce      json
// @Param        id   path  string  true  "Session ID"
// @Success      204  "Session deleted"
// @Failure      404  {object}  api.ErrorResponse  "Session not found"
// @Router       /session/{id} [delete]
func DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		sessionId := utils.GetChiURLParam(r, "id")
		if _, found := handlerInstance.service.SessionStore.GetSession(r.Context(), sessionId); !found {
			WriteErrorResponse(w, http.StatusNotFound, sessionId, "Session not found")
			return
		}

		if err := handlerInstance.indexes.DeleteIndex(r.Context(), sessionId); err != nil {
			logRH.Error("Failed to delete session index", "sessionId", sessionId, "error", err)
		}
		if err := handlerInstance.service.MessageStore.DeleteHistory(r.Context(), sessionId); err != nil {
			logRH.Error("Failed to delete session history", "sessionId", sessionId, "error", err)
		}
		handlerInstance.service.SessionStore.DeleteSession(r.Context(), sessionId)
		removeUploadedFiles(sessionId)

		w.WriteHeader(http.StatusNoContent)
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// UploadHandler handles the uploading of documents for session-scoped ingestion.
// @Summary      Upload documents for ingestion
// @Description  Receives files via multipart/form-data, saves them under the session's upload directory, queues one ingestion batch and waits for its outcome.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        id         path      string  true  "Session ID"
// @Param        documents  formData  file    true  "One or more files (pdf, docx, txt, md, csv, xlsx, images)"
// @Success      200  {object}  api.UploadResponse "Ingestion summary with per-file failures"
// @Failure      400  {object}  api.ErrorResponse  "Missing files or file too large"
// @Failure      404  {object}  api.ErrorResponse  "Session not found"
// @Failure      502  {object}  api.ErrorResponse  "Embedding model or index unavailable"
// @Router       /upload/{id} [post]
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		sessionId := utils.GetChiURLParam(r, "id")
		if _, found := handlerInstance.service.SessionStore.GetSession(r.Context(), sessionId); !found {
			WriteErrorResponse(w, http.StatusNotFound, sessionId, "Session not found")
			return
		}

		targetDir, errString := getTargetDirectory(sessionId)
		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, sessionId, errString)
			return
		}

		if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, sessionId, "File too large or bad request")
			return
		}

		fileHeaders := r.MultipartForm.File["documents"]
		if len(fileHeaders) == 0 {
			WriteErrorResponse(w, http.StatusBadRequest, sessionId, "documents field is required")
			return
		}

		filePaths := make([]string, 0, len(fileHeaders))
		for _, fileHeader := range fileHeaders {
			savedPath, err := saveUploadedFile(fileHeader, targetDir)
			if err != nil {
				WriteErrorResponse(w, http.StatusInternalServerError, sessionId, "Storage error")
				return
			}
			filePaths = append(filePaths, savedPath)
		}

		resultChannel := handlerInstance.enqueueIngest(r.Context(), sessionId, filePaths)

		select {
		case outcome := <-resultChannel:
			if outcome.Err != nil {
				logRH.Error("Ingestion batch failed", "sessionId", sessionId, "error", outcome.Err)
				WriteErrorResponse(w, http.StatusBadGateway, sessionId, "Ingestion failed: "+outcome.Err.Error())
				return
			}
			writeJsonResponse(w, http.StatusOK, adapter.ToUploadResponse(outcome.Result))

		case <-r.Context().Done():
			logRH.Warn("Client gone before ingestion finished", "sessionId", sessionId)
		}
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// QueryHandler godoc
// @Summary      Ask a question about the session's documents
// @Description  Runs the query pipeline (caches, retrieval, rerank, route, generate) and returns the answer with the chunk ids used as evidence.
// @Tags         Querying
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest  true  "Session ID and query text"
// @Success      200      {object}  api.QueryResponse
// @Failure      400      {object}  api.ErrorResponse  "Invalid request data"
// @Failure      404      {object}  api.ErrorResponse  "Session not found"
// @Failure      503      {object}  api.ErrorResponse  "Retrieval unavailable"
// @Router       /query [post]
func QueryHandler(w http.ResponseWriter, request *http.Request) {
	if validateContext(request.Context()) {
		var requestData api.QueryRequest
		defer func(Body io.ReadCloser) {
			if err := Body.Close(); err != nil {
				logRH.Error("Couldn't close the Query handler reader :", err)
			}
		}(request.Body)

		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || requestData.Query == "" || requestData.SessionId == "" {
			logRH.Warn("Bad Query Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionId, "Bad Request")
			return
		}

		if _, found := handlerInstance.service.SessionStore.GetSession(request.Context(), requestData.SessionId); !found {
			WriteErrorResponse(w, http.StatusNotFound, requestData.SessionId, "Session not found")
			return
		}

		history, err := handlerInstance.service.MessageStore.LoadHistory(request.Context(), requestData.SessionId)
		if err != nil {
			logRH.Error("Failed to load history, answering without it", "sessionId", requestData.SessionId, "error", err)
		}

		answer, err := handlerInstance.orchestrator.Answer(request.Context(), requestData.SessionId, requestData.Query, history)
		if err != nil {
			var unavailable *orchestrator.RetrievalUnavailable
			if errors.As(err, &unavailable) {
				WriteErrorResponse(w, http.StatusServiceUnavailable, requestData.SessionId, unavailable.Error())
				return
			}
			logRH.Error("Query pipeline failed", "sessionId", requestData.SessionId, "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, requestData.SessionId, "Could not answer the query")
			return
		}

		saveExchange(request, requestData, answer.Text)
		writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(requestData.SessionId, requestData.Query, answer))
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// HistoryHandler godoc
// @Summary      Get chat history
// @Description  Returns the ordered message history of a session.
// @Tags         Querying
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.HistoryResponse
// @Failure      404  {object}  api.ErrorResponse  "Session not found"
// @Router       /history/{id} [get]
func HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		sessionId := utils.GetChiURLParam(r, "id")
		if _, found := handlerInstance.service.SessionStore.GetSession(r.Context(), sessionId); !found {
			WriteErrorResponse(w, http.StatusNotFound, sessionId, "Session not found")
			return
		}

		history, err := handlerInstance.service.MessageStore.LoadHistory(r.Context(), sessionId)
		if err != nil {
			logRH.Error("Failed to load history", "sessionId", sessionId, "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, sessionId, "Could not load history")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToHistoryResponse(sessionId, history))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

func saveExchange(request *http.Request, requestData api.QueryRequest, answer string) {
	now := time.Now()
	store := handlerInstance.service.MessageStore
	if err := store.AppendMessage(request.Context(), requestData.SessionId, sessionModel.Message{Role: "user", Content: requestData.Query, SentAt: now}); err != nil {
		logRH.Error("Failed to save user message", "err", err)
	}
	if err := store.AppendMessage(request.Context(), requestData.SessionId, sessionModel.Message{Role: "assistant", Content: answer, SentAt: time.Now()}); err != nil {
		logRH.Error("Failed to save assistant message", "err", err)
	}
}

// saveUploadedFile writes the upload under its original basename. The name is
// kept stable because it becomes the chunk source that feeds id fingerprints:
// re-uploading the same file must overwrite, not accumulate, so the resulting
// chunk ids dedupe against the ones already indexed.
func saveUploadedFile(fileHeader *multipart.FileHeader, targetDir string) (string, error) {
	fileReader, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer fileReader.Close()

	filename := filepath.Base(fileHeader.Filename)
	if filename == "." || filename == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", fileHeader.Filename)
	}
	targetPath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(targetPath)
	if err != nil {
		return "", err
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		return "", err
	}
	return targetPath, nil
}

func removeUploadedFiles(sessionId string) {
	root, err := os.Getwd()
	if err != nil {
		return
	}
	if err := os.RemoveAll(filepath.Join(root, config.UploadBaseDir, sessionId)); err != nil {
		logRH.Error("Failed to remove uploaded files", "sessionId", sessionId, "error", err)
	}
}
