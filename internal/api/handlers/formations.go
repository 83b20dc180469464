package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/lineup-editor/internal/pitch"
	"github.com/jstittsworth/lineup-editor/pkg/utils"
)

type FormationHandler struct {
	catalog pitch.Catalog
}

func NewFormationHandler(catalog pitch.Catalog) *FormationHandler {
	return &FormationHandler{catalog: catalog}
}

// ListFormations returns every template in name order
func (h *FormationHandler) ListFormations(c *gin.Context) {
	names := h.catalog.Names()
	formations := make([]pitch.Formation, 0, len(names))
	for _, name := range names {
		f, _ := h.catalog.Lookup(name)
		formations = append(formations, f)
	}
	utils.SendSuccessWithMeta(c, formations, &utils.Meta{Total: int64(len(formations))})
}

func (h *FormationHandler) GetFormation(c *gin.Context) {
	f, ok := h.catalog.Lookup(c.Param("name"))
	if !ok {
		utils.SendNotFound(c, "Formation not found")
		return
	}
	utils.SendSuccess(c, f)
}
