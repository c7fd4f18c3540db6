package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	appmembership "github.com/clubhouse/backend/internal/application/membership"
	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/clubhouse/backend/internal/domain/shared"
	"github.com/clubhouse/backend/internal/interfaces/http/dto"
	"github.com/clubhouse/backend/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
)

// maxPerPage caps the page size a client may ask for
const maxPerPage = 100

// memberErrorKeys maps member validation codes to translation keys
var memberErrorKeys = map[string]string{
	"INVALID_SEX":    "member.invalid_sex",
	"INVALID_STATUS": "member.invalid_status",
	"INVALID_DATE":   "member.invalid_date",
	"NAME_REQUIRED":  "member.name_required",
}

// MemberHandler serves the member register as pages and as JSON
type MemberHandler struct {
	BaseHandler
	members  *appmembership.MemberService
	settings *appmembership.SettingsService
	payments *appmembership.PaymentService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(
	base BaseHandler,
	members *appmembership.MemberService,
	settings *appmembership.SettingsService,
	payments *appmembership.PaymentService,
) *MemberHandler {
	return &MemberHandler{
		BaseHandler: base,
		members:     members,
		settings:    settings,
		payments:    payments,
	}
}

// membersContent feeds the list page and its HTMX fragment
type membersContent struct {
	Query         appmembership.MemberListQuery
	Result        shared.Paginated[appmembership.MemberResponse]
	Levels        []appmembership.LevelResponse
	Locations     []appmembership.LocationResponse
	LevelNames    map[int64]string
	LocationNames map[int64]string
	Statuses      []membership.MemberStatus
	Sexes         []membership.Sex
	PrevURL       string
	NextURL       string
}

// memberFormContent feeds the create and edit form
type memberFormContent struct {
	Member    appmembership.MemberResponse
	Action    string
	Levels    []appmembership.LevelResponse
	Locations []appmembership.LocationResponse
	Statuses  []membership.MemberStatus
	Sexes     []membership.Sex
	Payments  []appmembership.PaymentResponse
}

func listQuery(req dto.MemberListRequest, defaultPerPage int) appmembership.MemberListQuery {
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return appmembership.MemberListQuery{
		Page:     req.Page,
		PerPage:  perPage,
		Query:    strings.TrimSpace(req.Query),
		Level:    req.Level,
		Location: req.Location,
		Status:   req.Status,
		Sex:      req.Sex,
		Sort:     req.Sort,
		Order:    req.Order,
	}
}

// pageURL links to another page of the list, keeping the filters
func pageURL(q appmembership.MemberListQuery, page int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	if q.PerPage != appmembership.HTMLMembersPerPage {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	for key, value := range map[string]string{
		"q":        q.Query,
		"level":    q.Level,
		"location": q.Location,
		"status":   q.Status,
		"sex":      q.Sex,
	} {
		if value != "" {
			v.Set(key, value)
		}
	}
	return "/members?" + v.Encode()
}

// List renders the member list. HTMX requests get only the list fragment.
func (h *MemberHandler) List(c *gin.Context) {
	var req dto.MemberListRequest
	_ = c.ShouldBindQuery(&req)
	q := listQuery(req, appmembership.HTMLMembersPerPage)

	ctx := c.Request.Context()
	result, err := h.members.List(ctx, q)
	if err != nil {
		h.PageError(c, err)
		return
	}
	overview, err := h.settings.Overview(ctx)
	if err != nil {
		h.PageError(c, err)
		return
	}

	content := membersContent{
		Query:         q,
		Result:        result,
		Levels:        overview.Levels,
		Locations:     overview.Locations,
		LevelNames:    overview.LevelNames(),
		LocationNames: overview.LocationNames(),
		Statuses:      membership.MemberStatuses,
		Sexes:         membership.Sexes,
	}
	if result.Page > 1 {
		content.PrevURL = pageURL(q, result.Page-1)
	}
	if result.Page < result.LastPage {
		content.NextURL = pageURL(q, result.Page+1)
	}

	data := h.pageData(c, content)
	if isHTMX(c) {
		h.Fragment(c, http.StatusOK, view.PageMembers, view.BlockMembersList, data)
		return
	}
	h.Page(c, http.StatusOK, view.PageMembers, data)
}

// renderForm shows the member form, with msg as error when set
func (h *MemberHandler) renderForm(c *gin.Context, member appmembership.MemberResponse, action, msg string) {
	ctx := c.Request.Context()
	overview, err := h.settings.Overview(ctx)
	if err != nil {
		h.PageError(c, err)
		return
	}
	content := memberFormContent{
		Member:    member,
		Action:    action,
		Levels:    overview.Levels,
		Locations: overview.Locations,
		Statuses:  membership.MemberStatuses,
		Sexes:     membership.Sexes,
	}
	if member.ID > 0 {
		content.Payments, err = h.payments.List(ctx, member.ID)
		if err != nil {
			h.PageError(c, err)
			return
		}
	}
	data := h.pageData(c, content)
	data.Error = msg
	h.Page(c, http.StatusOK, view.PageMemberForm, data)
}

// CreateForm renders an empty member form
func (h *MemberHandler) CreateForm(c *gin.Context) {
	h.renderForm(c, appmembership.MemberResponse{Status: string(membership.MemberStatusActive)}, "/members/create", "")
}

// Create stores a member from the form and returns to the list
func (h *MemberHandler) Create(c *gin.Context) {
	var form dto.MemberForm
	_ = c.ShouldBind(&form)

	if _, err := h.members.Create(c.Request.Context(), formInput(form)); err != nil {
		h.formFailed(c, formEcho(0, form), "/members/create", err)
		return
	}
	c.Redirect(http.StatusFound, "/members")
}

// EditForm renders the form of an existing member
func (h *MemberHandler) EditForm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.Redirect(http.StatusFound, "/members")
		return
	}
	member, err := h.members.Get(c.Request.Context(), id)
	if err != nil {
		h.memberMissing(c, err)
		return
	}
	h.renderForm(c, *member, editAction(id), "")
}

// Update stores the edited member and returns to the list
func (h *MemberHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.Redirect(http.StatusFound, "/members")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.members.Get(ctx, id); err != nil {
		h.memberMissing(c, err)
		return
	}

	var form dto.MemberForm
	_ = c.ShouldBind(&form)
	if _, err := h.members.Update(ctx, id, formInput(form)); err != nil {
		h.formFailed(c, formEcho(id, form), editAction(id), err)
		return
	}
	c.Redirect(http.StatusFound, "/members")
}

// Delete removes a member and returns to the list. Unknown ids are ignored.
func (h *MemberHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if ok {
		err := h.members.Delete(c.Request.Context(), id)
		if err != nil && !errors.Is(err, membership.ErrMemberNotFound) {
			h.PageError(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, "/members")
}

func (h *MemberHandler) memberMissing(c *gin.Context, err error) {
	if errors.Is(err, membership.ErrMemberNotFound) {
		c.Redirect(http.StatusFound, "/members")
		return
	}
	h.PageError(c, err)
}

func (h *MemberHandler) formFailed(c *gin.Context, echo appmembership.MemberResponse, action string, err error) {
	var key string
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		key = memberErrorKeys[domainErr.Code]
	}
	msg, ok := userMessage(c, key, err)
	if !ok {
		c.String(http.StatusInternalServerError, msg)
		return
	}
	h.renderForm(c, echo, action, msg)
}

func editAction(id int64) string {
	return "/members/" + strconv.FormatInt(id, 10) + "/edit"
}

// formInput converts the form. Empty or unparsable selects mean no reference.
func formInput(form dto.MemberForm) appmembership.MemberInput {
	return appmembership.MemberInput{
		Name:        form.Name,
		Surname:     form.Surname,
		DateOfBirth: form.DateOfBirth,
		Sex:         form.Sex,
		Status:      form.Status,
		LevelID:     optionalID(form.LevelID),
		LocationID:  optionalID(form.LocationID),
	}
}

// formEcho refills a rejected form with what the user typed
func formEcho(id int64, form dto.MemberForm) appmembership.MemberResponse {
	return appmembership.MemberResponse{
		ID:          id,
		Name:        form.Name,
		Surname:     form.Surname,
		DateOfBirth: form.DateOfBirth,
		Sex:         form.Sex,
		Status:      form.Status,
		LevelID:     optionalID(form.LevelID),
		LocationID:  optionalID(form.LocationID),
	}
}

func optionalID(s string) *int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// APIList returns one page of members as JSON
func (h *MemberHandler) APIList(c *gin.Context) {
	var req dto.MemberListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	result, err := h.members.List(c.Request.Context(), listQuery(req, appmembership.APIMembersPerPage))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MemberListResponse[appmembership.MemberResponse]{
		Page:     result.Page,
		PerPage:  result.PerPage,
		Total:    result.Total,
		LastPage: result.LastPage,
		Members:  result.Items,
	})
}

// APIGet returns one member
func (h *MemberHandler) APIGet(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.notFound(c)
		return
	}
	member, err := h.members.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// APICreate registers a member from JSON
func (h *MemberHandler) APICreate(c *gin.Context) {
	var req dto.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	member, err := h.members.Create(c.Request.Context(), appmembership.MemberInput{
		Name:        req.Name,
		Surname:     req.Surname,
		DateOfBirth: req.DateOfBirth,
		Sex:         req.Sex,
		Status:      req.Status,
		LevelID:     req.LevelID,
		LocationID:  req.LocationID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CreatedResponse{ID: member.ID})
}

// APIUpdate changes only the fields present in the JSON body
func (h *MemberHandler) APIUpdate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.notFound(c)
		return
	}
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.BindError(c, err)
		return
	}
	patch, err := decodeMemberPatch(raw)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if _, err := h.members.Patch(c.Request.Context(), id, patch); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok"})
}

// APIDelete removes a member
func (h *MemberHandler) APIDelete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.notFound(c)
		return
	}
	if err := h.members.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok"})
}

// ListPayments returns a member's payments, newest period first
func (h *MemberHandler) ListPayments(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.notFound(c)
		return
	}
	payments, err := h.payments.List(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// RecordPayment stores a payment for one period
func (h *MemberHandler) RecordPayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.notFound(c)
		return
	}
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	payment, err := h.payments.Record(c.Request.Context(), appmembership.RecordPaymentInput{
		MemberID: id,
		Period:   req.Period,
		PriceID:  req.PriceID,
		Amount:   req.Amount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *MemberHandler) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, membership.ErrMemberNotFound.Message))
}

// decodeMemberPatch reads a partial member. A present null clears the field.
func decodeMemberPatch(raw map[string]json.RawMessage) (appmembership.MemberPatch, error) {
	var patch appmembership.MemberPatch
	text := func(key string) (*string, error) {
		value, ok := raw[key]
		if !ok {
			return nil, nil
		}
		s := ""
		if string(value) != "null" {
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, errors.New(key + " must be a string")
			}
		}
		return &s, nil
	}
	ref := func(key string) (appmembership.OptionalID, error) {
		value, ok := raw[key]
		if !ok {
			return appmembership.OptionalID{}, nil
		}
		if string(value) == "null" {
			return appmembership.OptionalID{Set: true}, nil
		}
		var id int64
		if err := json.Unmarshal(value, &id); err != nil {
			return appmembership.OptionalID{}, errors.New(key + " must be an integer")
		}
		return appmembership.OptionalID{Set: true, Value: &id}, nil
	}

	var err error
	for key, dst := range map[string]**string{
		"name":          &patch.Name,
		"surname":       &patch.Surname,
		"date_of_birth": &patch.DateOfBirth,
		"sex":           &patch.Sex,
		"status":        &patch.Status,
	} {
		if *dst, err = text(key); err != nil {
			return patch, err
		}
	}
	if patch.LevelID, err = ref("level_id"); err != nil {
		return patch, err
	}
	if patch.LocationID, err = ref("location_id"); err != nil {
		return patch, err
	}
	return patch, nil
}
