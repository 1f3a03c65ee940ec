package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"lexmcp/internal/model"
	"lexmcp/internal/protocol"
)

const (
	toolNameProvisions = protocol.ToolNameProvisions
	toolNameCaseLaw    = protocol.ToolNameCaseLaw
	toolNamePlaybooks  = protocol.ToolNamePlaybooks
	toolNameTemplate   = protocol.ToolNameTemplate
	toolNameCompliance = protocol.ToolNameCompliance
	toolNameSemantic   = protocol.ToolNameSemantic
)

var toolOrder = []string{
	toolNameProvisions,
	toolNameCaseLaw,
	toolNamePlaybooks,
	toolNameTemplate,
	toolNameCompliance,
	toolNameSemantic,
}

type toolHandler func(context.Context, map[string]interface{}) (toolCallResult, *toolExecutionError)

type toolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	handler     toolHandler            `json:"-"`
}

type toolsCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

type toolCallResult struct {
	Content           []toolContentItem `json:"content"`
	StructuredContent interface{}       `json:"structuredContent,omitempty"`
	IsError           bool              `json:"isError,omitempty"`
}

type toolContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolExecutionError struct {
	Code      string
	Message   string
	Retryable bool
}

func (s *Server) buildToolRegistry() map[string]toolDefinition {
	return map[string]toolDefinition{
		toolNameProvisions: {
			Name:        toolNameProvisions,
			Description: "Search statutory or rules provisions; an exact section number bypasses semantic ranking.",
			InputSchema: provisionsInputSchema(),
			handler:     s.handleProvisionsTool,
		},
		toolNameCaseLaw: {
			Name:        toolNameCaseLaw,
			Description: "Find case law by semantic similarity, optionally limited to cases interpreting a given section.",
			InputSchema: caseLawInputSchema(),
			handler:     s.handleCaseLawTool,
		},
		toolNamePlaybooks: {
			Name:        toolNamePlaybooks,
			Description: "Retrieve internal playbook guidance for a scenario, optionally scoped to a category.",
			InputSchema: playbookInputSchema(),
			handler:     s.handlePlaybookTool,
		},
		toolNameTemplate: {
			Name:        toolNameTemplate,
			Description: "Fetch the current active version of a document template.",
			InputSchema: templateInputSchema(),
			handler:     s.handleTemplateTool,
		},
		toolNameCompliance: {
			Name:        toolNameCompliance,
			Description: "Run a compliance check (pending implementation; echoes inputs).",
			InputSchema: complianceInputSchema(),
			handler:     s.handleComplianceTool,
		},
		toolNameSemantic: {
			Name:        toolNameSemantic,
			Description: "Semantic search across statute, rules, case law and playbooks with merged ranking.",
			InputSchema: semanticInputSchema(),
			handler:     s.handleSemanticTool,
		},
	}
}

// orderedTools returns catalog entries in the fixed publication order so
// tools/list output is reproducible call to call.
func (s *Server) orderedTools() []toolDefinition {
	tools := make([]toolDefinition, 0, len(s.tools))
	for _, name := range toolOrder {
		if tool, ok := s.tools[name]; ok {
			tools = append(tools, tool)
		}
	}
	if len(tools) == len(s.tools) {
		return tools
	}
	// A tool outside toolOrder is a programmer error; still publish it
	// deterministically rather than dropping it.
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	tools = tools[:0]
	for _, name := range names {
		tools = append(tools, s.tools[name])
	}
	return tools
}

func (s *Server) processToolsCall(ctx context.Context, rawParams json.RawMessage) (toolCallResult, *rpcError) {
	params, err := parseToolsCallParams(rawParams)
	if err != nil {
		canonicalCode := protocol.ErrorCodeInvalidField
		var vErr validationError
		if errors.As(err, &vErr) && vErr.canonicalCode != "" {
			canonicalCode = vErr.canonicalCode
		}
		return toolCallResult{}, &rpcError{
			Code:    rpcCodeInvalidRequest,
			Message: err.Error(),
			Data:    &rpcErrorData{Code: canonicalCode, Retryable: false},
		}
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		return newToolErrorResult(toolExecutionError{
			Code:      protocol.ErrorCodeMethodNotFound,
			Message:   fmt.Sprintf("unknown tool: %s", params.Name),
			Retryable: false,
		}), nil
	}

	result, toolErr := tool.handler(ctx, params.Arguments)
	if toolErr != nil {
		return newToolErrorResult(*toolErr), nil
	}
	return result, nil
}

func parseToolsCallParams(raw json.RawMessage) (toolsCallParams, error) {
	if len(raw) == 0 {
		return toolsCallParams{}, validationError{
			message:       "params is required",
			canonicalCode: protocol.ErrorCodeMissingField,
		}
	}

	var params toolsCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return toolsCallParams{}, validationError{
			message:       "invalid tools/call params",
			canonicalCode: protocol.ErrorCodeInvalidField,
		}
	}

	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return toolsCallParams{}, validationError{
			message:       "tools/call params.name is required",
			canonicalCode: protocol.ErrorCodeMissingField,
		}
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}
	return params, nil
}

func newToolErrorResult(toolErr toolExecutionError) toolCallResult {
	structured := map[string]interface{}{
		"error": map[string]interface{}{
			"code":      toolErr.Code,
			"message":   toolErr.Message,
			"retryable": toolErr.Retryable,
		},
	}
	return toolCallResult{
		IsError:           true,
		Content:           []toolContentItem{{Type: "text", Text: fmt.Sprintf("ERROR: %s: %s", toolErr.Code, toolErr.Message)}},
		StructuredContent: structured,
	}
}

// newToolResult serializes the structured payload into the single text
// content block so callers that only read text still get a parseable
// document, and mirrors it in structuredContent for hosts that support it.
func newToolResult(structured map[string]interface{}) toolCallResult {
	text, err := json.Marshal(structured)
	if err != nil {
		// Payloads are maps of JSON-safe values; failing here means a
		// programming error, reported in-band rather than crashing the call.
		return newToolErrorResult(toolExecutionError{
			Code:    protocol.ErrorCodeInternalError,
			Message: "failed to serialize result: " + err.Error(),
		})
	}
	return toolCallResult{
		Content:           []toolContentItem{{Type: "text", Text: string(text)}},
		StructuredContent: structured,
	}
}

// ---------------------------------------------------------------------------
// Typed per-tool requests. Each tool's arguments are validated into one of
// these before the engine is invoked; malformed calls never reach it.

type provisionsRequest struct {
	Query         string
	DocumentType  model.Source
	SectionNumber string
	MaxResults    int
}

type caseLawRequest struct {
	Query      string
	Section    string
	MaxResults int
}

type playbookRequest struct {
	Scenario   string
	Category   string
	MaxResults int
}

type templateRequest struct {
	TemplateType string
	CaseCode     string
}

type complianceRequest struct {
	CheckType      string
	CaseCode       string
	OrganizationID string
}

type semanticRequest struct {
	Query      string
	Sources    []model.Source
	MaxResults int
}

func (s *Server) parseProvisionsRequest(args map[string]interface{}) (provisionsRequest, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{
		"query":          {},
		"document_type":  {},
		"section_number": {},
		"max_results":    {},
	}); err != nil {
		return provisionsRequest{}, invalidField(err)
	}

	query, ok, err := parseRequiredString(args, "query")
	if err != nil {
		return provisionsRequest{}, invalidField(err)
	}
	if !ok {
		return provisionsRequest{}, missingField("query is required")
	}

	docTypeRaw, err := parseOptionalString(args, "document_type")
	if err != nil {
		return provisionsRequest{}, invalidField(err)
	}
	docType := model.SourceStatute
	if docTypeRaw != "" {
		parsed, parseErr := model.ParseSource(docTypeRaw)
		if parseErr != nil || parsed.DocumentType() == "" {
			return provisionsRequest{}, &toolExecutionError{
				Code:    protocol.ErrorCodeInvalidField,
				Message: "document_type must be one of statute,rules",
			}
		}
		docType = parsed
	}

	sectionNumber, err := parseOptionalString(args, "section_number")
	if err != nil {
		return provisionsRequest{}, invalidField(err)
	}

	maxResults, toolErr := s.parseMaxResults(args, s.defaults.ProvisionsK)
	if toolErr != nil {
		return provisionsRequest{}, toolErr
	}

	return provisionsRequest{
		Query:         query,
		DocumentType:  docType,
		SectionNumber: sectionNumber,
		MaxResults:    maxResults,
	}, nil
}

func (s *Server) parseCaseLawRequest(args map[string]interface{}) (caseLawRequest, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{
		"query":       {},
		"section":     {},
		"max_results": {},
	}); err != nil {
		return caseLawRequest{}, invalidField(err)
	}

	query, ok, err := parseRequiredString(args, "query")
	if err != nil {
		return caseLawRequest{}, invalidField(err)
	}
	if !ok {
		return caseLawRequest{}, missingField("query is required")
	}

	section, err := parseOptionalString(args, "section")
	if err != nil {
		return caseLawRequest{}, invalidField(err)
	}

	maxResults, toolErr := s.parseMaxResults(args, s.defaults.CaseLawK)
	if toolErr != nil {
		return caseLawRequest{}, toolErr
	}

	return caseLawRequest{Query: query, Section: section, MaxResults: maxResults}, nil
}

func (s *Server) parsePlaybookRequest(args map[string]interface{}) (playbookRequest, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{
		"scenario":    {},
		"category":    {},
		"max_results": {},
	}); err != nil {
		return playbookRequest{}, invalidField(err)
	}

	scenario, ok, err := parseRequiredString(args, "scenario")
	if err != nil {
		return playbookRequest{}, invalidField(err)
	}
	if !ok {
		return playbookRequest{}, missingField("scenario is required")
	}

	category, err := parseOptionalString(args, "category")
	if err != nil {
		return playbookRequest{}, invalidField(err)
	}

	maxResults, toolErr := s.parseMaxResults(args, s.defaults.PlaybooksK)
	if toolErr != nil {
		return playbookRequest{}, toolErr
	}

	return playbookRequest{Scenario: scenario, Category: category, MaxResults: maxResults}, nil
}

func parseTemplateRequest(args map[string]interface{}) (templateRequest, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{
		"template_type": {},
		"case_code":     {},
	}); err != nil {
		return templateRequest{}, invalidField(err)
	}

	templateType, ok, err := parseRequiredString(args, "template_type")
	if err != nil {
		return templateRequest{}, invalidField(err)
	}
	if !ok {
		return templateRequest{}, missingField("template_type is required")
	}

	caseCode, err := parseOptionalString(args, "case_code")
	if err != nil {
		return templateRequest{}, invalidField(err)
	}

	return templateRequest{TemplateType: templateType, CaseCode: caseCode}, nil
}

func parseComplianceRequest(args map[string]interface{}) (complianceRequest, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{
		"check_type":      {},
		"case_code":       {},
		"organization_id": {},
	}); err != nil {
		return complianceRequest{}, invalidField(err)
	}

	checkType, ok, err := parseRequiredString(args, "check_type")
	if err != nil {
		return complianceRequest{}, invalidField(err)
	}
	if !ok {
		return complianceRequest{}, missingField("check_type is required")
	}

	caseCode, err := parseOptionalString(args, "case_code")
	if err != nil {
		return complianceRequest{}, invalidField(err)
	}
	orgID, err := parseOptionalString(args, "organization_id")
	if err != nil {
		return complianceRequest{}, invalidField(err)
	}

	return complianceRequest{CheckType: checkType, CaseCode: caseCode, OrganizationID: orgID}, nil
}

func (s *Server) parseSemanticRequest(args map[string]interface{}) (semanticRequest, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{
		"query":       {},
		"sources":     {},
		"max_results": {},
	}); err != nil {
		return semanticRequest{}, invalidField(err)
	}

	query, ok, err := parseRequiredString(args, "query")
	if err != nil {
		return semanticRequest{}, invalidField(err)
	}
	if !ok {
		return semanticRequest{}, missingField("query is required")
	}

	rawSources, err := parseOptionalStringSlice(args, "sources")
	if err != nil {
		return semanticRequest{}, invalidField(err)
	}
	var sources []model.Source
	for _, raw := range rawSources {
		src, parseErr := model.ParseSource(raw)
		if parseErr != nil {
			return semanticRequest{}, &toolExecutionError{
				Code:    protocol.ErrorCodeInvalidField,
				Message: fmt.Sprintf("sources must be a subset of statute,rules,case_law,playbooks; got %q", raw),
			}
		}
		sources = append(sources, src)
	}

	maxResults, toolErr := s.parseMaxResults(args, s.defaults.SemanticK)
	if toolErr != nil {
		return semanticRequest{}, toolErr
	}

	return semanticRequest{Query: query, Sources: sources, MaxResults: maxResults}, nil
}

// parseMaxResults applies the tool-specific default and enforces only the
// lower bound: callers may ask for any count >= 1 and are never silently
// clamped beyond that.
func (s *Server) parseMaxResults(args map[string]interface{}, defaultK int) (int, *toolExecutionError) {
	raw, exists := args["max_results"]
	if !exists {
		return defaultK, nil
	}
	parsed, err := parseInteger(raw, "max_results")
	if err != nil {
		return 0, invalidField(err)
	}
	if parsed < 1 {
		return 0, &toolExecutionError{
			Code:    protocol.ErrorCodeInvalidRange,
			Message: "max_results must be >= 1",
		}
	}
	return parsed, nil
}

// ---------------------------------------------------------------------------
// Handlers

func (s *Server) handleProvisionsTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	req, toolErr := s.parseProvisionsRequest(args)
	if toolErr != nil {
		return toolCallResult{}, toolErr
	}

	result, err := s.engine.Retrieve(ctx, model.Query{
		Source:        req.DocumentType,
		Text:          req.Query,
		SectionNumber: req.SectionNumber,
		MaxResults:    req.MaxResults,
	})
	if err != nil {
		return toolCallResult{}, mapToolErrorFromProvider(err)
	}

	structured := map[string]interface{}{
		"query":         req.Query,
		"document_type": string(req.DocumentType),
		"found":         result.Found,
		"matched_by":    result.MatchedBy,
		"results":       serializeSectionHits(result),
	}
	if req.SectionNumber != "" {
		structured["section_number"] = req.SectionNumber
	}
	return newToolResult(structured), nil
}

func (s *Server) handleCaseLawTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	req, toolErr := s.parseCaseLawRequest(args)
	if toolErr != nil {
		return toolCallResult{}, toolErr
	}

	result, err := s.engine.Retrieve(ctx, model.Query{
		Source:     model.SourceCaseLaw,
		Text:       req.Query,
		Section:    req.Section,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		return toolCallResult{}, mapToolErrorFromProvider(err)
	}

	cases := make([]map[string]interface{}, 0, len(result.Hits))
	for _, hit := range result.Hits {
		cases = append(cases, serializeCase(hit))
	}
	structured := map[string]interface{}{
		"query":   req.Query,
		"found":   result.Found,
		"results": cases,
	}
	if req.Section != "" {
		structured["section"] = req.Section
	}
	return newToolResult(structured), nil
}

func (s *Server) handlePlaybookTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	req, toolErr := s.parsePlaybookRequest(args)
	if toolErr != nil {
		return toolCallResult{}, toolErr
	}

	result, err := s.engine.Retrieve(ctx, model.Query{
		Source:     model.SourcePlaybooks,
		Text:       req.Scenario,
		Category:   req.Category,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		return toolCallResult{}, mapToolErrorFromProvider(err)
	}

	playbooks := make([]map[string]interface{}, 0, len(result.Hits))
	for _, hit := range result.Hits {
		playbooks = append(playbooks, serializePlaybook(hit))
	}
	structured := map[string]interface{}{
		"scenario": req.Scenario,
		"found":    result.Found,
		"results":  playbooks,
	}
	if req.Category != "" {
		structured["category"] = req.Category
	}
	return newToolResult(structured), nil
}

func (s *Server) handleTemplateTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	req, toolErr := parseTemplateRequest(args)
	if toolErr != nil {
		return toolCallResult{}, toolErr
	}

	structured := map[string]interface{}{
		"template_type": req.TemplateType,
	}
	if req.CaseCode != "" {
		// case_code is a pass-through for the calling agent's bookkeeping;
		// it plays no part in template resolution.
		structured["case_code"] = req.CaseCode
	}

	tpl, err := s.engine.Template(ctx, req.TemplateType)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			structured["found"] = false
			return newToolResult(structured), nil
		}
		return toolCallResult{}, mapToolErrorFromProvider(err)
	}

	structured["found"] = true
	structured["template"] = map[string]interface{}{
		"id":            tpl.ID.String(),
		"template_type": tpl.TemplateType,
		"version":       tpl.Version,
		"content":       tpl.Content,
	}
	return newToolResult(structured), nil
}

func (s *Server) handleComplianceTool(_ context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	req, toolErr := parseComplianceRequest(args)
	if toolErr != nil {
		return toolCallResult{}, toolErr
	}

	// The compliance engine lives outside this server. The tool stays in the
	// catalog so agents discover it, but it only echoes its inputs.
	structured := map[string]interface{}{
		"status":     "pending_implementation",
		"message":    "compliance checks are not implemented yet",
		"check_type": req.CheckType,
	}
	if req.CaseCode != "" {
		structured["case_code"] = req.CaseCode
	}
	if req.OrganizationID != "" {
		structured["organization_id"] = req.OrganizationID
	}
	return newToolResult(structured), nil
}

func (s *Server) handleSemanticTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	req, toolErr := s.parseSemanticRequest(args)
	if toolErr != nil {
		return toolCallResult{}, toolErr
	}

	hits, err := s.engine.MultiSearch(ctx, req.Query, req.Sources, req.MaxResults)
	if err != nil {
		return toolCallResult{}, mapToolErrorFromProvider(err)
	}

	results := make([]map[string]interface{}, 0, len(hits))
	for _, hit := range hits {
		results = append(results, serializeHit(hit))
	}

	sources := req.Sources
	if len(sources) == 0 {
		sources = model.SemanticSources()
	}
	sourceNames := make([]string, 0, len(sources))
	for _, src := range sources {
		sourceNames = append(sourceNames, string(src))
	}

	structured := map[string]interface{}{
		"query":   req.Query,
		"sources": sourceNames,
		"found":   len(hits) > 0,
		"results": results,
	}
	return newToolResult(structured), nil
}

// mapToolErrorFromProvider translates engine and collaborator failures into
// the in-band tool error envelope.
func mapToolErrorFromProvider(err error) *toolExecutionError {
	var provErr *model.ProviderError
	if errors.As(err, &provErr) {
		return &toolExecutionError{
			Code:      provErr.Code,
			Message:   provErr.Message,
			Retryable: provErr.Retryable,
		}
	}
	if errors.Is(err, model.ErrUnknownSource) {
		return &toolExecutionError{
			Code:    protocol.ErrorCodeInvalidField,
			Message: err.Error(),
		}
	}
	return &toolExecutionError{
		Code:      protocol.ErrorCodeInternalError,
		Message:   err.Error(),
		Retryable: true,
	}
}

// ---------------------------------------------------------------------------
// Result serialization

func serializeSectionHits(result model.Result) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if hit.Section == nil {
			continue
		}
		entry := map[string]interface{}{
			"section_number": hit.Section.SectionNumber,
			"section_title":  hit.Section.SectionTitle,
			"section_text":   hit.Section.SectionText,
			"citation":       hit.Section.Citation,
			"document_type":  hit.Section.DocumentType,
		}
		if result.MatchedBy == model.MatchSemantic {
			entry["similarity"] = hit.Similarity
		}
		out = append(out, entry)
	}
	return out
}

func serializeCase(hit model.Hit) map[string]interface{} {
	entry := hit.Case
	out := map[string]interface{}{
		"case_name":            entry.CaseName,
		"citation":             entry.Citation,
		"court":                entry.Court,
		"facts_summary":        entry.FactsSummary,
		"issues":               entry.Issues,
		"holdings":             entry.Holdings,
		"ratio_decidendi":      entry.RatioDecidendi,
		"sections_interpreted": entry.SectionsInterpreted,
		"similarity":           hit.Similarity,
	}
	if !entry.DecidedDate.IsZero() {
		out["decided_date"] = entry.DecidedDate.Format("2006-01-02")
	}
	return out
}

func serializePlaybook(hit model.Hit) map[string]interface{} {
	pb := hit.Playbook
	return map[string]interface{}{
		"title":                pb.Title,
		"category":             pb.Category,
		"scenario":             pb.Scenario,
		"recommended_approach": pb.RecommendedApproach,
		"do_list":              pb.DoList,
		"dont_list":            pb.DontList,
		"legal_references":     pb.LegalReferences,
		"difficulty_level":     pb.DifficultyLevel,
		"similarity":           hit.Similarity,
	}
}

// serializeHit tags each multi-source result with its provenance.
func serializeHit(hit model.Hit) map[string]interface{} {
	var payload map[string]interface{}
	switch {
	case hit.Section != nil:
		payload = map[string]interface{}{
			"section_number": hit.Section.SectionNumber,
			"section_title":  hit.Section.SectionTitle,
			"section_text":   hit.Section.SectionText,
			"citation":       hit.Section.Citation,
			"document_type":  hit.Section.DocumentType,
		}
	case hit.Case != nil:
		payload = serializeCase(hit)
		delete(payload, "similarity")
	case hit.Playbook != nil:
		payload = serializePlaybook(hit)
		delete(payload, "similarity")
	default:
		payload = map[string]interface{}{}
	}
	return map[string]interface{}{
		"source":     string(hit.Source),
		"similarity": hit.Similarity,
		"result":     payload,
	}
}

// ---------------------------------------------------------------------------
// Argument parsing helpers

func assertNoUnknownArguments(args map[string]interface{}, allowed map[string]struct{}) error {
	for key := range args {
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("unknown argument: %s", key)
		}
	}
	return nil
}

func parseRequiredString(args map[string]interface{}, key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok {
		return "", false, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", true, fmt.Errorf("%s must be a string", key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", true, fmt.Errorf("%s must be a non-empty string", key)
	}
	return value, true, nil
}

func parseOptionalString(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(value), nil
}

func parseInteger(value interface{}, field string) (int, error) {
	switch v := value.(type) {
	case float64:
		if math.Trunc(v) != v {
			return 0, fmt.Errorf("%s must be an integer", field)
		}
		if v < math.MinInt || v > math.MaxInt {
			return 0, fmt.Errorf("%s is out of range", field)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return 0, fmt.Errorf("%s is out of range", field)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s must be an integer", field)
	}
}

func parseOptionalStringSlice(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch typed := raw.(type) {
	case []interface{}:
		out := make([]string, 0, len(typed))
		for idx, item := range typed {
			v, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", key, idx)
			}
			v = strings.TrimSpace(v)
			if v == "" {
				return nil, fmt.Errorf("%s[%d] must be a non-empty string", key, idx)
			}
			out = append(out, v)
		}
		return out, nil
	case []string:
		out := make([]string, 0, len(typed))
		for idx, item := range typed {
			item = strings.TrimSpace(item)
			if item == "" {
				return nil, fmt.Errorf("%s[%d] must be a non-empty string", key, idx)
			}
			out = append(out, item)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
}

func invalidField(err error) *toolExecutionError {
	return &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
}

func missingField(message string) *toolExecutionError {
	return &toolExecutionError{Code: protocol.ErrorCodeMissingField, Message: message}
}

// ---------------------------------------------------------------------------
// Input schemas

func provisionsInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Free-text description of the provision sought.",
			},
			"document_type": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"statute", "rules"},
				"description": "Which body of law to search. Defaults to statute.",
			},
			"section_number": map[string]interface{}{
				"type":        "string",
				"description": "Exact section number; when it matches, semantic search is skipped.",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"minimum":     1,
				"description": "Result cap (default 5).",
			},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}

func caseLawInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Facts or legal issue to match against decided cases.",
			},
			"section": map[string]interface{}{
				"type":        "string",
				"description": "Only return cases whose interpreted sections include this section number.",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"minimum":     1,
				"description": "Result cap (default 3).",
			},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}

func playbookInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"scenario": map[string]interface{}{
				"type":        "string",
				"description": "The client situation to find guidance for.",
			},
			"category": map[string]interface{}{
				"type":        "string",
				"description": "Playbook category to scope the search to.",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"minimum":     1,
				"description": "Result cap (default 3).",
			},
		},
		"required":             []string{"scenario"},
		"additionalProperties": false,
	}
}

func templateInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"template_type": map[string]interface{}{
				"type":        "string",
				"description": "Template type key; the highest active version is returned.",
			},
			"case_code": map[string]interface{}{
				"type":        "string",
				"description": "Caller bookkeeping value, echoed back unchanged.",
			},
		},
		"required":             []string{"template_type"},
		"additionalProperties": false,
	}
}

func complianceInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"check_type": map[string]interface{}{
				"type":        "string",
				"description": "Kind of compliance check requested.",
			},
			"case_code": map[string]interface{}{
				"type": "string",
			},
			"organization_id": map[string]interface{}{
				"type": "string",
			},
		},
		"required":             []string{"check_type"},
		"additionalProperties": false,
	}
}

func semanticInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Free-text query searched across all requested sources.",
			},
			"sources": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string", "enum": []string{"statute", "rules", "case_law", "playbooks"}},
				"description": "Sources to search. Defaults to all.",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"minimum":     1,
				"description": "Global result cap after merging (default 5).",
			},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}
