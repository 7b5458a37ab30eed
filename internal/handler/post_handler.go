package handlers

import (
	"context"
	"mime"
	"net/http"

	"github.com/gorilla/mux"

	"citizenpress/internal/models"
	"citizenpress/internal/requestctx"
	"citizenpress/internal/service"
	"citizenpress/internal/utils"
)

type PostListResponse struct {
	Posts []models.PostView `json:"posts"`
}

// UpdatePostRequest is the JSON form of a post edit. Absent fields are left unchanged.
type UpdatePostRequest struct {
	Heading     *string            `json:"heading"`
	Description *string            `json:"description"`
	Location    *string            `json:"location"`
	Category    *string            `json:"category"`
	Status      *models.PostStatus `json:"status"`
}

func postQuery(r *http.Request) service.PostQuery {
	q := r.URL.Query()

	location := q.Get("location")
	if location == "" {
		location = q.Get("ward")
	}

	return service.PostQuery{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Location: location,
		Search:   q.Get("search"),
		Page:     utils.ParsePage(q.Get("page"), q.Get("limit"), 0),
	}
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	caller, _ := requestctx.User(r.Context())

	page, err := h.PostService.List(r.Context(), caller, postQuery(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, page, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	caller, _ := requestctx.User(r.Context())

	post, err := h.PostService.Get(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, post, http.StatusOK)
}

func (h *Handlers) GetBreakingNews(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.Breaking(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, PostListResponse{Posts: posts}, http.StatusOK)
}

func (h *Handlers) GetMyPosts(w http.ResponseWriter, r *http.Request) {
	caller, ok := requestctx.User(r.Context())
	if !ok {
		WriteError(w, "authorization required", http.StatusUnauthorized)
		return
	}

	posts, err := h.PostService.MyPosts(r.Context(), caller)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, PostListResponse{Posts: posts}, http.StatusOK)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	caller, ok := requestctx.User(r.Context())
	if !ok {
		WriteError(w, "authorization required", http.StatusUnauthorized)
		return
	}

	if !h.parseForm(w, r) {
		return
	}

	upload, done, ok := h.formFile(w, r, FieldPostMedia)
	if !ok {
		return
	}
	defer done()

	in := service.CreatePostInput{
		Heading:     r.FormValue("heading"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Category:    r.FormValue("category"),
		File:        upload,
	}

	post, err := h.PostService.Create(r.Context(), caller, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, post, http.StatusCreated)
}

// formString returns a pointer to the form value of key when the key was submitted.
func formString(r *http.Request, key string) *string {
	values, ok := r.Form[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	caller, ok := requestctx.User(r.Context())
	if !ok {
		WriteError(w, "authorization required", http.StatusUnauthorized)
		return
	}

	var patch service.PostPatch

	if isJSON(r) {
		var req UpdatePostRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		patch = service.PostPatch{
			Heading:     req.Heading,
			Description: req.Description,
			Location:    req.Location,
			Category:    req.Category,
			Status:      req.Status,
		}
	} else {
		if !h.parseForm(w, r) {
			return
		}

		upload, done, ok := h.formFile(w, r, FieldPostMedia)
		if !ok {
			return
		}
		defer done()

		patch = service.PostPatch{
			Heading:     formString(r, "heading"),
			Description: formString(r, "description"),
			Location:    formString(r, "location"),
			Category:    formString(r, "category"),
			File:        upload,
		}
		if status := formString(r, "status"); status != nil {
			s := models.PostStatus(*status)
			patch.Status = &s
		}
	}

	post, err := h.PostService.Update(r.Context(), caller, mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	caller, ok := requestctx.User(r.Context())
	if !ok {
		WriteError(w, "authorization required", http.StatusUnauthorized)
		return
	}

	if err := h.PostService.Delete(r.Context(), caller, mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, MessageResponse{Message: "post deleted"}, http.StatusOK)
}

func (h *Handlers) LikePost(w http.ResponseWriter, r *http.Request) {
	caller, ok := requestctx.User(r.Context())
	if !ok {
		WriteError(w, "authorization required", http.StatusUnauthorized)
		return
	}

	result, err := h.PostService.ToggleLike(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, result, http.StatusOK)
}

func (h *Handlers) ApprovePost(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.PostService.Approve)
}

func (h *Handlers) RejectPost(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.PostService.Reject)
}

type moderation func(ctx context.Context, admin *models.User, postID string) (*models.PostView, error)

func (h *Handlers) moderate(w http.ResponseWriter, r *http.Request, action moderation) {
	admin, ok := requestctx.User(r.Context())
	if !ok {
		WriteError(w, "authorization required", http.StatusUnauthorized)
		return
	}

	post, err := action(r.Context(), admin, mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, post, http.StatusOK)
}
