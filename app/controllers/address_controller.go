package controllers

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/requests"
	"github.com/address-normalizer/app/responses"
	"github.com/address-normalizer/app/services"
)

// Version is reported by the health and index endpoints.
const Version = "1.0.0"

// AddressController serves parsing, jobs and city suggestions.
type AddressController struct {
	addressService *services.AddressService
	cityService    *services.CityService
	logger         *zap.Logger
}

// NewAddressController wires the address endpoints.
func NewAddressController(addressService *services.AddressService, cityService *services.CityService, logger *zap.Logger) *AddressController {
	return &AddressController{
		addressService: addressService,
		cityService:    cityService,
		logger:         logger,
	}
}

// ParseAddress parses one address. Unparseable text is still a 200; the
// outcome carries an empty record and the minimum confidence.
func (ac *AddressController) ParseAddress(c *gin.Context) {
	var req requests.ParseAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	start := time.Now()
	outcome, err := ac.addressService.ParseAddress(c.Request.Context(), req.Text, req.Options)
	if err != nil {
		ac.logger.Error("parse address failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "PARSE_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.NewParseAddressResponse(outcome, time.Since(start)))
}

// BatchParse parses a CSV-import batch synchronously.
func (ac *AddressController) BatchParse(c *gin.Context) {
	var req requests.BatchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	out, err := ac.addressService.ParseBatch(c.Request.Context(), req.ImportType, req.Addresses)
	if err != nil {
		ac.batchError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.BatchParseResponse{
		Success:        out.Success,
		ProcessedCount: out.ProcessedCount,
		ErrorCount:     out.ErrorCount,
		Results:        out.Results,
	})
}

// SubmitJob queues a batch for background processing.
func (ac *AddressController) SubmitJob(c *gin.Context) {
	var req requests.BatchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	job, err := ac.addressService.SubmitJob(req.ImportType, req.Addresses)
	if err != nil {
		ac.batchError(c, err)
		return
	}

	base := "/v1/addresses/jobs/" + job.JobID
	c.JSON(http.StatusAccepted, responses.JobSubmittedResponse{
		JobID:          job.JobID,
		TotalAddresses: job.Total,
		StatusURL:      base + "/status",
		ResultsURL:     base + "/results",
		Message:        "job accepted",
	})
}

func (ac *AddressController) batchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnsupportedImportType):
		abortWithError(c, http.StatusBadRequest, "UNSUPPORTED_IMPORT_TYPE", err.Error())
	case errors.Is(err, services.ErrTooManyAddresses):
		abortWithError(c, http.StatusBadRequest, "TOO_MANY_ADDRESSES", err.Error())
	default:
		ac.logger.Error("batch parse failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "BATCH_ERROR", err.Error())
	}
}

// GetJobStatus reports a job's progress.
func (ac *AddressController) GetJobStatus(c *gin.Context) {
	status, err := ac.addressService.GetJobStatus(c.Param("jobID"))
	if err != nil {
		ac.jobError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetJobResults returns a finished job as JSON, or as NDJSON (optionally
// gzipped) with ?format=ndjson&gzip=1.
func (ac *AddressController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")

	if c.Query("format") == "ndjson" {
		ac.streamNDJSONResults(c, jobID, c.Query("gzip") == "1")
		return
	}

	out, err := ac.addressService.GetJobResults(jobID)
	if err != nil {
		ac.jobError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (ac *AddressController) jobError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrJobNotFound):
		abortWithError(c, http.StatusNotFound, "JOB_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrJobNotDone):
		abortWithError(c, http.StatusConflict, "JOB_NOT_DONE", err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "JOB_ERROR", err.Error())
	}
}

func (ac *AddressController) streamNDJSONResults(c *gin.Context, jobID string, gzipEnabled bool) {
	resultChannel, err := ac.addressService.GetJobResultsStream(c.Request.Context(), jobID)
	if err != nil {
		ac.jobError(c, err)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		writer = &gzipResponseWriter{ResponseWriter: c.Writer, gzWriter: gzWriter}
	}
	c.Status(http.StatusOK)

	encoder := json.NewEncoder(writer)
	for result := range resultChannel {
		if err := encoder.Encode(result); err != nil {
			ac.logger.Error("encode ndjson row", zap.String("job_id", jobID), zap.Error(err))
			return
		}
		writer.Flush()
	}
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.gzWriter.Write([]byte(s))
}

func (w *gzipResponseWriter) Flush() {
	w.gzWriter.Flush()
	w.ResponseWriter.Flush()
}

// SuggestCities lists gazetteer cities resembling ?q=, optionally within
// ?state=.
func (ac *AddressController) SuggestCities(c *gin.Context) {
	var req requests.CitySuggestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.CitySuggestResponse{
		Query:   req.Query,
		State:   req.State,
		Matches: ac.cityService.Suggest(req.Query, req.State, req.Limit),
	})
}

// HealthCheck answers the health, readiness and liveness probes.
func (ac *AddressController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(ac.addressService.GetStartTime()).Round(time.Second).String(),
		Version:   Version,
		Services: map[string]string{
			"address_parser": "healthy",
		},
	})
}

// abortWithError writes the error envelope, tagged with the request id set by
// the routes middleware.
func abortWithError(c *gin.Context, status int, code, message string) {
	resp := responses.NewErrorResponse(code, message)
	resp.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(status, resp)
}
