package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rigaku-tools/machine-fleet-backend/internal/models"
	"github.com/rigaku-tools/machine-fleet-backend/internal/services"
	"github.com/rigaku-tools/machine-fleet-backend/internal/services/excel"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MachineHandler struct {
	machineService *services.MachineService
	excelService   *excel.Service
}

func NewMachineHandler(machineService *services.MachineService, excelService *excel.Service) *MachineHandler {
	return &MachineHandler{
		machineService: machineService,
		excelService:   excelService,
	}
}

// GetAllMachines godoc
// @Summary List all machines
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.MachineDto
// @Failure 401 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/machines [get]
func (h *MachineHandler) GetAllMachines(c *gin.Context) {
	machines, err := h.machineService.GetAllMachines()
	if err != nil {
		logrus.Errorf("Failed to list machines: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve machines"})
		return
	}
	c.JSON(http.StatusOK, machines)
}

// GetMachineByID godoc
// @Summary Get a machine by ID
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Param id path int true "Machine ID"
// @Success 200 {object} models.MachineDto
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/machines/{id} [get]
func (h *MachineHandler) GetMachineByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	machine, err := h.machineService.GetMachineByID(id)
	if err != nil {
		if errors.Is(err, services.ErrMachineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Machine with ID %d not found", id)})
			return
		}
		logrus.Errorf("Failed to get machine %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve machine"})
		return
	}
	c.JSON(http.StatusOK, machine)
}

// GetMachineByName godoc
// @Summary Get a machine by name
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Param name path string true "Machine name"
// @Success 200 {object} models.MachineDto
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/machines/by-name/{name} [get]
func (h *MachineHandler) GetMachineByName(c *gin.Context) {
	name := c.Param("name")

	machine, err := h.machineService.GetMachineByName(name)
	if err != nil {
		if errors.Is(err, services.ErrMachineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Machine with name '%s' not found", name)})
			return
		}
		logrus.Errorf("Failed to get machine %q: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve machine"})
		return
	}
	c.JSON(http.StatusOK, machine)
}

// GetMachinesByStatus godoc
// @Summary List machines by status
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Param status path string true "Machine status" Enums(Running, Idle, Maintenance, Error)
// @Success 200 {array} models.MachineDto
// @Failure 400 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/machines/by-status/{status} [get]
func (h *MachineHandler) GetMachinesByStatus(c *gin.Context) {
	status, err := models.ParseMachineStatus(c.Param("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	machines, err := h.machineService.GetMachinesByStatus(status)
	if err != nil {
		logrus.Errorf("Failed to list machines by status %s: %v", status, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve machines"})
		return
	}
	c.JSON(http.StatusOK, machines)
}

// GetMachinesByLocation godoc
// @Summary List machines by location
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Param country query string true "Country"
// @Param city query string false "City"
// @Success 200 {array} models.MachineDto
// @Failure 400 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/machines/by-location [get]
func (h *MachineHandler) GetMachinesByLocation(c *gin.Context) {
	country := c.Query("country")
	if country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "country query parameter is required"})
		return
	}

	machines, err := h.machineService.GetMachinesByLocation(country, c.Query("city"))
	if err != nil {
		logrus.Errorf("Failed to list machines by location: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve machines"})
		return
	}
	c.JSON(http.StatusOK, machines)
}

// CreateMachine godoc
// @Summary Create a machine
// @Tags machines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateMachineRequest true "Machine creation data"
// @Success 201 {object} models.MachineDto
// @Failure 400 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/machines [post]
func (h *MachineHandler) CreateMachine(c *gin.Context) {
	var req models.CreateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data: " + err.Error()})
		return
	}

	machine, err := h.machineService.CreateMachine(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMachineNameExists), errors.Is(err, services.ErrTubeCountMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			logrus.Errorf("Failed to create machine: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create machine"})
		}
		return
	}
	c.JSON(http.StatusCreated, machine)
}

// UpdateMachine godoc
// @Summary Update a machine
// @Description All fields are optional; only supplied fields change. PATCH
// @Description shares this handler.
// @Tags machines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Machine ID"
// @Param request body models.UpdateMachineRequest true "Machine update data"
// @Success 200 {object} models.MachineDto
// @Failure 400 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/machines/{id} [put]
func (h *MachineHandler) UpdateMachine(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.UpdateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data: " + err.Error()})
		return
	}

	machine, err := h.machineService.UpdateMachine(id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMachineNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Machine with ID %d not found", id)})
		case errors.Is(err, services.ErrMachineNameExists), errors.Is(err, services.ErrTubeCountMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			logrus.Errorf("Failed to update machine %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update machine"})
		}
		return
	}
	c.JSON(http.StatusOK, machine)
}

// DeleteMachine godoc
// @Summary Delete a machine
// @Description Deletes a machine and its tubes. The location row is kept.
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Param id path int true "Machine ID"
// @Success 204
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/machines/{id} [delete]
func (h *MachineHandler) DeleteMachine(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.machineService.DeleteMachine(id); err != nil {
		if errors.Is(err, services.ErrMachineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Machine with ID %d not found", id)})
			return
		}
		logrus.Errorf("Failed to delete machine %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete machine"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportMachines godoc
// @Summary Export the fleet as an Excel workbook
// @Tags machines
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 500 {object} models.MessageResponse
// @Router /api/machines/export [get]
func (h *MachineHandler) ExportMachines(c *gin.Context) {
	machines, err := h.machineService.GetAllMachines()
	if err != nil {
		logrus.Errorf("Failed to export machines: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to export machines"})
		return
	}

	buf, err := h.excelService.ExportMachines(machines)
	if err != nil {
		logrus.Errorf("Failed to render machine export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to export machines"})
		return
	}

	filename := fmt.Sprintf("machines-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// parseID reads the numeric :id path parameter, replying 400 on junk.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}
