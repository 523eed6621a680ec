package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
)

type createCustomerRequest struct {
	Name     string     `json:"name"`
	Phone    string     `json:"phone"`
	Email    string     `json:"email"`
	Address  string     `json:"address"`
	Carrier  string     `json:"carrier"`
	Notes    string     `json:"notes"`
	JoinDate *time.Time `json:"join_date"`
}

type updateCustomerRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Carrier *string `json:"carrier"`
	Notes   *string `json:"notes"`
}

type addNumberRequest struct {
	Phone   string `json:"phone"`
	Carrier string `json:"carrier"`
	Label   string `json:"label"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
		Email:    strings.TrimSpace(req.Email),
		Address:  strings.TrimSpace(req.Address),
		Carrier:  strings.TrimSpace(req.Carrier),
		Notes:    strings.TrimSpace(req.Notes),
		JoinDate: req.JoinDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListCustomers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name       string `form:"name"`
		Phone      string `form:"phone"`
		Email      string `form:"email"`
		JoinedFrom string `form:"joined_from"`
		JoinedTo   string `form:"joined_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	joinedFrom, joinedTo, err := parseDateRange("joined_from", query.JoinedFrom, "joined_to", query.JoinedTo, true)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		Name:       strings.TrimSpace(query.Name),
		Phone:      strings.TrimSpace(query.Phone),
		Email:      strings.TrimSpace(query.Email),
		JoinedFrom: joinedFrom,
		JoinedTo:   joinedTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	resp, err := s.customerSvc.GetByID(c.Request.Context(), pathID(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), customerdomain.UpdateCustomerRequest{
		ID:      pathID(c.Param("id")),
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Carrier: req.Carrier,
		Notes:   req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	if err := s.customerSvc.Delete(c.Request.Context(), pathID(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListCustomerNumbers(c *gin.Context) {
	resp, err := s.customerSvc.ListNumbers(c.Request.Context(), pathID(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddCustomerNumber(c *gin.Context) {
	var req addNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.AddNumber(c.Request.Context(), customerdomain.AddNumberRequest{
		CustomerID: pathID(c.Param("id")),
		Phone:      strings.TrimSpace(req.Phone),
		Carrier:    strings.TrimSpace(req.Carrier),
		Label:      strings.TrimSpace(req.Label),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) RemoveCustomerNumber(c *gin.Context) {
	err := s.customerSvc.RemoveNumber(c.Request.Context(), pathID(c.Param("id")), pathID(c.Param("number_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
