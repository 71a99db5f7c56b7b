// Package handler implements the framework-agnostic operation
// dispatcher: it maps a typed OperationRequest onto the resource
// provider (directly, or through the conditional package when an
// expected version is supplied), embedding ETag/version metadata in
// every successful response and a structured conflict payload on
// precondition failures.
package handler

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xraph/scimcore/conditional"
	"github.com/xraph/scimcore/internal/errs"
	"github.com/xraph/scimcore/patch"
	"github.com/xraph/scimcore/provider"
	"github.com/xraph/scimcore/registry"
	"github.com/xraph/scimcore/resource"
	"github.com/xraph/scimcore/tenant"
	"github.com/xraph/scimcore/version"
)

// Operation enumerates the dispatchable operations of spec.md §4.7.
type Operation string

const (
	OpCreate     Operation = "Create"
	OpGet        Operation = "Get"
	OpUpdate     Operation = "Update"
	OpDelete     Operation = "Delete"
	OpList       Operation = "List"
	OpSearch     Operation = "Search"
	OpGetSchemas Operation = "GetSchemas"
	OpGetSchema  Operation = "GetSchema"
	OpExists     Operation = "Exists"
	OpPatch      Operation = "Patch"
)

// Request is the transport-agnostic operation request.
type Request struct {
	Operation       Operation
	ResourceType    string
	ResourceID      string
	Data            []byte
	Query           *tenant.ListQuery
	TenantContext   *tenant.Context
	RequestID       string
	ExpectedVersion *version.Version
}

// Metadata carries the envelope fields every response includes, plus an
// Additional bag for operation-specific fields (version, etag, conflict
// details).
type Metadata struct {
	ResourceType  string         `json:"resourceType,omitempty"`
	ResourceID    string         `json:"resourceId,omitempty"`
	ResourceCount *int           `json:"resourceCount,omitempty"`
	TotalResults  *int           `json:"totalResults,omitempty"`
	RequestID     string         `json:"requestId"`
	TenantID      string         `json:"tenantId,omitempty"`
	Schemas       []string       `json:"schemas,omitempty"`
	Additional    map[string]any `json:"additional,omitempty"`
}

// Response is the transport-agnostic operation response.
type Response struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorCode string          `json:"errorCode,omitempty"`
	Metadata  Metadata        `json:"metadata"`
}

// Handler dispatches OperationRequests to a Provider and SchemaRegistry.
type Handler struct {
	provider provider.Provider
	registry *registry.Registry
	logger   *zap.Logger
}

// New builds a Handler over p and reg.
func New(p provider.Provider, reg *registry.Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{provider: p, registry: reg, logger: logger}
}

// Dispatch routes req to the appropriate provider call and assembles a
// Response. It never panics: every provider/validation error is
// translated into a structured failure response.
func (h *Handler) Dispatch(ctx context.Context, req Request) Response {
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	rctx := tenant.NewRequestContext(requestID, req.TenantContext)
	tenantID := tenant.EffectiveTenantID(rctx)
	baseMeta := Metadata{RequestID: requestID, TenantID: tenantID, ResourceType: req.ResourceType, ResourceID: req.ResourceID}

	needsID := map[Operation]bool{OpGet: true, OpUpdate: true, OpDelete: true, OpPatch: true, OpExists: true, OpGetSchema: true}
	if needsID[req.Operation] && req.ResourceID == "" {
		return errorResponse(errs.InvalidRequest("resource_id is required for this operation"), baseMeta)
	}

	switch req.Operation {
	case OpCreate:
		return h.dispatchCreate(ctx, req, rctx, baseMeta)
	case OpGet:
		return h.dispatchGet(ctx, req, rctx, baseMeta)
	case OpUpdate:
		return h.dispatchUpdate(ctx, req, rctx, baseMeta)
	case OpPatch:
		return h.dispatchPatch(ctx, req, rctx, baseMeta)
	case OpDelete:
		return h.dispatchDelete(ctx, req, rctx, baseMeta)
	case OpList, OpSearch:
		return h.dispatchList(ctx, req, rctx, baseMeta)
	case OpExists:
		return h.dispatchExists(ctx, req, rctx, baseMeta)
	case OpGetSchemas:
		return h.dispatchGetSchemas(baseMeta)
	case OpGetSchema:
		return h.dispatchGetSchema(req, baseMeta)
	default:
		return errorResponse(errs.UnsupportedOperation(string(req.Operation)), baseMeta)
	}
}

func (h *Handler) dispatchCreate(ctx context.Context, req Request, rctx tenant.RequestContext, baseMeta Metadata) Response {
	if req.Data == nil {
		return errorResponse(errs.InvalidRequest("data is required for create"), baseMeta)
	}
	vr, err := h.provider.Create(ctx, req.ResourceType, req.Data, rctx)
	if err != nil {
		return errorResponse(err, baseMeta)
	}
	return successResponse(vr, baseMeta)
}

func (h *Handler) dispatchGet(ctx context.Context, req Request, rctx tenant.RequestContext, baseMeta Metadata) Response {
	vr, err := h.provider.Get(ctx, req.ResourceType, req.ResourceID, rctx)
	if err != nil {
		return errorResponse(err, baseMeta)
	}
	if vr == nil {
		return Response{Success: true, Data: nil, Metadata: baseMeta}
	}
	return successResponse(*vr, baseMeta)
}

func (h *Handler) dispatchUpdate(ctx context.Context, req Request, rctx tenant.RequestContext, baseMeta Metadata) Response {
	if req.Data == nil {
		return errorResponse(errs.InvalidRequest("data is required for update"), baseMeta)
	}
	if req.ExpectedVersion != nil {
		result, err := conditional.Update(ctx, h.provider, req.ResourceType, req.ResourceID, req.Data, *req.ExpectedVersion, rctx)
		if err != nil {
			return errorResponse(err, baseMeta)
		}
		return conditionalResourceResponse(result, *req.ExpectedVersion, baseMeta)
	}
	vr, err := h.provider.Update(ctx, req.ResourceType, req.ResourceID, req.Data, rctx)
	if err != nil {
		return errorResponse(err, baseMeta)
	}
	return successResponse(vr, baseMeta)
}

func (h *Handler) dispatchPatch(ctx context.Context, req Request, rctx tenant.RequestContext, baseMeta Metadata) Response {
	if req.Data == nil {
		return errorResponse(errs.InvalidRequest("data is required for patch"), baseMeta)
	}
	var preq patch.Request
	if err := json.Unmarshal(req.Data, &preq); err != nil {
		return errorResponse(errs.InvalidRequest("malformed PATCH request body"), baseMeta)
	}

	expected := req.ExpectedVersion
	if preq.ETag != "" {
		v, err := version.ParseETag(preq.ETag)
		if err != nil {
			return errorResponse(err, baseMeta)
		}
		expected = &v
	}

	if expected != nil {
		result, err := conditional.Patch(ctx, h.provider, req.ResourceType, req.ResourceID, preq, *expected, rctx)
		if err != nil {
			return errorResponse(err, baseMeta)
		}
		return conditionalResourceResponse(result, *expected, baseMeta)
	}
	vr, err := h.provider.Patch(ctx, req.ResourceType, req.ResourceID, preq, rctx)
	if err != nil {
		return errorResponse(err, baseMeta)
	}
	return successResponse(vr, baseMeta)
}

func (h *Handler) dispatchDelete(ctx context.Context, req Request, rctx tenant.RequestContext, baseMeta Metadata) Response {
	if req.ExpectedVersion != nil {
		result, err := conditional.Delete(ctx, h.provider, req.ResourceType, req.ResourceID, *req.ExpectedVersion, rctx)
		if err != nil {
			return errorResponse(err, baseMeta)
		}
		switch {
		case result.IsSuccess():
			return Response{Success: true, Metadata: baseMeta}
		case result.IsNotFound():
			return errorResponse(errs.ResourceNotFound(req.ResourceType, req.ResourceID), baseMeta)
		default:
			return conflictResponse(result.ConflictValue(), baseMeta)
		}
	}
	if err := h.provider.Delete(ctx, req.ResourceType, req.ResourceID, rctx); err != nil {
		return errorResponse(err, baseMeta)
	}
	return Response{Success: true, Metadata: baseMeta}
}

func (h *Handler) dispatchList(ctx context.Context, req Request, rctx tenant.RequestContext, baseMeta Metadata) Response {
	query := tenant.ListQuery{}
	if req.Query != nil {
		query = *req.Query
	}
	result, err := h.provider.List(ctx, req.ResourceType, query, rctx)
	if err != nil {
		return errorResponse(err, baseMeta)
	}

	resources := make([]json.RawMessage, 0, len(result.Resources))
	for _, vr := range result.Resources {
		raw, err := vr.Resource.ToJSON()
		if err != nil {
			return errorResponse(errs.InternalError(err), baseMeta)
		}
		resources = append(resources, json.RawMessage(raw))
	}
	payload := map[string]any{
		"schemas":      []string{"urn:ietf:params:scim:api:messages:2.0:ListResponse"},
		"totalResults": result.TotalResults,
		"startIndex":   result.StartIndex,
		"itemsPerPage": result.ItemsPerPage,
		"Resources":    resources,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return errorResponse(errs.InternalError(err), baseMeta)
	}

	meta := baseMeta
	count := result.ItemsPerPage
	total := result.TotalResults
	meta.ResourceCount = &count
	meta.TotalResults = &total
	return Response{Success: true, Data: data, Metadata: meta}
}

func (h *Handler) dispatchExists(ctx context.Context, req Request, rctx tenant.RequestContext, baseMeta Metadata) Response {
	ok, err := h.provider.Exists(ctx, req.ResourceType, req.ResourceID, rctx)
	if err != nil {
		return errorResponse(err, baseMeta)
	}
	data, _ := json.Marshal(map[string]any{"exists": ok})
	return Response{Success: true, Data: data, Metadata: baseMeta}
}

func (h *Handler) dispatchGetSchemas(baseMeta Metadata) Response {
	schemas := h.registry.ListAll()
	data, err := json.Marshal(map[string]any{"schemas": schemaSummaries(schemas), "totalResults": len(schemas)})
	if err != nil {
		return errorResponse(errs.InternalError(err), baseMeta)
	}
	return Response{Success: true, Data: data, Metadata: baseMeta}
}

func (h *Handler) dispatchGetSchema(req Request, baseMeta Metadata) Response {
	s, ok := h.registry.GetByURI(req.ResourceID)
	if !ok {
		return errorResponse(errs.SchemaNotFound(req.ResourceID), baseMeta)
	}
	data, err := json.Marshal(schemaSummary(s))
	if err != nil {
		return errorResponse(errs.InternalError(err), baseMeta)
	}
	return Response{Success: true, Data: data, Metadata: baseMeta}
}

func schemaSummaries(schemas []registry.Schema) []map[string]any {
	out := make([]map[string]any, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, schemaSummary(s))
	}
	return out
}

func schemaSummary(s registry.Schema) map[string]any {
	return map[string]any{"id": s.ID, "name": s.Name, "description": s.Description}
}

func successResponse(vr resource.VersionedResource, meta Metadata) Response {
	raw, err := vr.Resource.ToJSON()
	if err != nil {
		return errorResponse(errs.InternalError(err), meta)
	}
	meta.Additional = map[string]any{"version": vr.Version.Raw(), "etag": vr.Version.HTTP()}
	return Response{Success: true, Data: raw, Metadata: meta}
}

func conditionalResourceResponse(result version.ConditionalResult[resource.VersionedResource], expected version.Version, meta Metadata) Response {
	switch {
	case result.IsSuccess():
		return successResponse(result.Value(), meta)
	case result.IsNotFound():
		return errorResponse(errs.ResourceNotFound(meta.ResourceType, meta.ResourceID), meta)
	default:
		return conflictResponse(result.ConflictValue(), meta)
	}
}

func conflictResponse(conflict version.Conflict, meta Metadata) Response {
	meta.Additional = map[string]any{
		"expected_version": conflict.Expected.Raw(),
		"current_version":  conflict.Current.Raw(),
		"expected_etag":    conflict.Expected.HTTP(),
		"current_etag":     conflict.Current.HTTP(),
	}
	return Response{
		Success:   false,
		Error:     conflict.HumanMessage,
		ErrorCode: errs.CodeVersionMismatch,
		Metadata:  meta,
	}
}

func errorResponse(err error, meta Metadata) Response {
	message := err.Error()
	if e, ok := err.(*errs.Error); ok {
		message = e.Message
	}
	return Response{
		Success:   false,
		Error:     message,
		ErrorCode: errs.Code(err),
		Metadata:  meta,
	}
}
