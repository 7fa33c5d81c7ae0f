package handlers

import (
	"net/http"

	"safecircle/internal/models"
	"safecircle/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type addMemberBody struct {
	Name           string `json:"name" binding:"required"`
	PhoneNumber    string `json:"phoneNumber" binding:"required"`
	Category       string `json:"category"`
	ProfilePicture string `json:"profilePicture"`
}

// AddCircleMember handles POST /users/:userId/circle.
func (h *Handlers) AddCircleMember(c *gin.Context) {
	var body addMemberBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and phoneNumber required")
		return
	}

	member, err := models.AddCircleMember(h.db, c.Param("userId"), models.CircleMember{
		Name:           body.Name,
		PhoneNumber:    body.PhoneNumber,
		Category:       models.CircleCategory(body.Category),
		ProfilePicture: body.ProfilePicture,
	})
	if err != nil {
		response.ServerError(c, "failed to add member")
		return
	}
	response.Success(c, "member added", gin.H{"member": member})
}

// ListCircle handles GET /users/:userId/circle.
func (h *Handlers) ListCircle(c *gin.Context) {
	members, err := models.ListCircleMembers(h.db, c.Param("userId"))
	if err != nil {
		response.ServerError(c, "failed to load circle")
		return
	}
	response.Success(c, "ok", gin.H{"members": members})
}

// RemoveCircleMember handles DELETE /users/:userId/circle/:memberId.
func (h *Handlers) RemoveCircleMember(c *gin.Context) {
	err := models.RemoveCircleMember(h.db, c.Param("userId"), c.Param("memberId"))
	if err == gorm.ErrRecordNotFound {
		response.Fail(c, http.StatusNotFound, "member not found")
		return
	}
	if err != nil {
		response.ServerError(c, "failed to remove member")
		return
	}
	response.Success(c, "member removed", nil)
}
