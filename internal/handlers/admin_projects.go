package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alextreichler/portfolio/internal/imaging"
	"github.com/alextreichler/portfolio/internal/models"
	"github.com/alextreichler/portfolio/internal/projects"
)

const maxUploadBytes = 10 << 20 // 10MB

// uploadedImage preprocesses the optional file in field. A missing file
// yields "". A file that is not an image is logged and also yields "", so
// the rest of the form still goes through.
func uploadedImage(r *http.Request, field string) string {
	file, header, err := r.FormFile(field)
	if err != nil {
		return ""
	}
	defer file.Close()

	uri, err := imaging.Preprocess(file)
	if err != nil {
		slog.Error("Image processing failed", "file", header.Filename, "error", err)
		return ""
	}
	return uri
}

// ProjectsJSON lists the stored records for the open panel.
func (h *AdminHandler) ProjectsJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Projects.Projects())
}

func (h *AdminHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	defer session.Save(r, w)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		session.AddFlash(FlashMessage{Type: "error", Message: "File too large. Max 10MB."})
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	draft := projects.Draft{
		Title:       r.FormValue("title"),
		Brand:       r.FormValue("brand"),
		Description: r.FormValue("description"),
		Tags:        r.FormValue("tags"),
		Link:        r.FormValue("link"),
		ImageURL:    uploadedImage(r, "image"),
	}

	p, err := h.Projects.Add(r.Context(), draft)
	if wantsJSON(r) {
		switch {
		case errors.Is(err, projects.ErrInvalid):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		case err != nil:
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Error adding project."})
		default:
			writeJSON(w, http.StatusCreated, p)
		}
		return
	}

	switch {
	case errors.Is(err, projects.ErrInvalid):
		session.AddFlash(FlashMessage{Type: "error", Message: "Title is required."})
	case err != nil:
		session.AddFlash(FlashMessage{Type: "error", Message: "Error adding project."})
	default:
		session.AddFlash(FlashMessage{Type: "success", Message: "Record added."})
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// DeleteProject removes the row from the cached list before the backend
// answers; a failed delete reloads the list.
func (h *AdminHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	defer session.Save(r, w)

	id := r.FormValue("id")
	if id == "" {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid ID."})
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	err := h.Projects.Delete(r.Context(), id)
	if wantsJSON(r) {
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{"error": "Delete failed.", "projects": h.Projects.Projects()})
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Delete failed. The list has been reloaded."})
	} else {
		session.AddFlash(FlashMessage{Type: "success", Message: "Record deleted."})
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// SetHeroImage replaces the hero artwork on the landing page.
func (h *AdminHandler) SetHeroImage(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	defer session.Save(r, w)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "File too large. Max 10MB."})
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	uri := uploadedImage(r, "image")
	if uri == "" {
		// nothing usable was uploaded; leave the current hero in place
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	if err := h.SiteConfig.SetSiteConfig(r.Context(), models.HeroImageKey, uri); err != nil {
		slog.Error("Error saving hero image", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Error saving hero image."})
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Hero image updated."})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
