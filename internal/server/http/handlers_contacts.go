package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkravets/contactdesk/internal/common"
	"github.com/mkravets/contactdesk/internal/server/models"
	"github.com/mkravets/contactdesk/internal/server/services"
)

func intQuery(c *gin.Context, name string, def, min, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func contactID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid contact id", common.ErrorValidation)
	}
	return id, nil
}

// contactsOrEmpty keeps list responses as [] instead of null.
func contactsOrEmpty(list []*models.Contact) []*models.Contact {
	if list == nil {
		return []*models.Contact{}
	}
	return list
}

func (s *Server) listContacts(c *gin.Context) {
	user := currentUser(c)
	limit := intQuery(c, "limit", 100, 1, 500)
	offset := intQuery(c, "offset", 0, 0, 1<<30)

	list, err := s.contacts.List(c.Request.Context(), user, limit, offset)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contactsOrEmpty(list))
}

func (s *Server) getContact(c *gin.Context) {
	user := currentUser(c)

	id, err := contactID(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	contact, err := s.contacts.Get(c.Request.Context(), id, user)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (s *Server) createContact(c *gin.Context) {
	user := currentUser(c)

	var in services.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}

	contact, err := s.contacts.Create(c.Request.Context(), &in, user)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (s *Server) updateContact(c *gin.Context) {
	user := currentUser(c)

	id, err := contactID(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	var in services.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}

	contact, err := s.contacts.Update(c.Request.Context(), id, &in, user)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (s *Server) deleteContact(c *gin.Context) {
	user := currentUser(c)

	id, err := contactID(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	if _, err := s.contacts.Delete(c.Request.Context(), id, user); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) searchContacts(c *gin.Context) {
	user := currentUser(c)
	limit := intQuery(c, "limit", 10, 10, 500)
	offset := intQuery(c, "offset", 0, 0, 1<<30)

	filters := map[string]string{}
	for _, name := range []string{"first_name", "last_name", "email"} {
		if val := c.Query(name); val != "" {
			filters[name] = val
		}
	}

	list, err := s.contacts.Search(c.Request.Context(), filters, user, limit, offset)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contactsOrEmpty(list))
}

func (s *Server) upcomingBirthdays(c *gin.Context) {
	user := currentUser(c)

	list, err := s.contacts.UpcomingBirthdays(c.Request.Context(), user)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contactsOrEmpty(list))
}
