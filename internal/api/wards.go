package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/repository"
)

type createWardRequest struct {
	Code      string  `json:"code" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	District  string  `json:"district" binding:"required"`
	Province  string  `json:"province" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *Handler) listWards(c *gin.Context) {
	filter := repository.WardFilter{
		Province: c.Query("province"),
		District: c.Query("district"),
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 {
			filter.Limit = lim
		}
	}
	if o := c.Query("offset"); o != "" {
		if off, err := strconv.Atoi(o); err == nil && off > 0 {
			filter.Offset = off
		}
	}

	wards, err := h.repo.ListWards(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list wards"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wards": wards, "count": len(wards)})
}

func (h *Handler) getWard(c *gin.Context) {
	ward, err := h.repo.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ward not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch ward"})
		return
	}
	c.JSON(http.StatusOK, ward)
}

func (h *Handler) createWard(c *gin.Context) {
	var req createWardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ward := &models.Ward{
		Code:      req.Code,
		Name:      req.Name,
		District:  req.District,
		Province:  req.Province,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := ward.Location().Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.repo.Add(c.Request.Context(), ward); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "ward code already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create ward"})
		return
	}
	c.JSON(http.StatusCreated, ward)
}

func (h *Handler) deleteWard(c *gin.Context) {
	if err := h.repo.DeleteByCode(c.Request.Context(), c.Param("code")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ward not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete ward"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ward deleted"})
}
