package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/milktracker/internal/common"
	"github.com/dmitrijs2005/milktracker/internal/models"
	"github.com/labstack/echo/v4"
)

// --- auth ---

func (s *Server) register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	u, err := s.users.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// token takes OAuth2 password-flow form fields; username carries the email.
func (s *Server) token(c echo.Context) error {
	tok, err := s.users.Login(c.Request().Context(), c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tok)
}

// --- users ---

func (s *Server) me(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) updateProfile(c echo.Context) error {
	var upd models.ProfileUpdate
	if err := c.Bind(&upd); err != nil {
		return err
	}
	u, err := s.users.UpdateProfile(c.Request().Context(), currentUser(c).ID, upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) updateMembership(c echo.Context) error {
	u, err := s.users.UpdateMembership(c.Request().Context(), currentUser(c).ID, c.QueryParam("membership_type"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) deleteAccount(c echo.Context) error {
	if err := s.users.DeleteAccount(c.Request().Context(), currentUser(c).ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Detail{Detail: "User account deleted successfully"})
}

// --- herds ---

func pageParams(c echo.Context) (skip, limit int, err error) {
	err = echo.QueryParamsBinder(c).
		Int("skip", &skip).
		Int("limit", &limit).
		BindError()
	return skip, limit, err
}

func idParam(c echo.Context) (int64, error) {
	var id int64
	err := echo.PathParamsBinder(c).MustInt64("id", &id).BindError()
	return id, err
}

func (s *Server) listHerds(c echo.Context) error {
	skip, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	list, err := s.herds.List(c.Request().Context(), currentUser(c).ID, skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) createHerd(c echo.Context) error {
	var in models.HerdInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	h, err := s.herds.Create(c.Request().Context(), currentUser(c).ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h)
}

func (s *Server) getHerd(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	h, err := s.herds.Get(c.Request().Context(), currentUser(c).ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h)
}

func (s *Server) updateHerd(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in models.HerdInput
	if err := (&echo.DefaultBinder{}).BindBody(c, &in); err != nil {
		return err
	}
	h, err := s.herds.Update(c.Request().Context(), currentUser(c).ID, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h)
}

func (s *Server) deleteHerd(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	h, err := s.herds.Delete(c.Request().Context(), currentUser(c).ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h)
}

// --- milk production ---

func herdParam(c echo.Context) (int64, error) {
	var herdID int64
	err := echo.QueryParamsBinder(c).Int64("herd_id", &herdID).BindError()
	return herdID, err
}

func (s *Server) listRecords(c echo.Context) error {
	herdID, err := herdParam(c)
	if err != nil {
		return err
	}
	skip, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	list, err := s.milk.List(c.Request().Context(), currentUser(c).ID, herdID, skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) createRecord(c echo.Context) error {
	var in models.MilkRecordInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	r, err := s.milk.Create(c.Request().Context(), currentUser(c).ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) getRecord(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	r, err := s.milk.Get(c.Request().Context(), currentUser(c).ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) updateRecord(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in models.MilkRecordInput
	if err := (&echo.DefaultBinder{}).BindBody(c, &in); err != nil {
		return err
	}
	r, err := s.milk.Update(c.Request().Context(), currentUser(c).ID, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) deleteRecord(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	r, err := s.milk.Delete(c.Request().Context(), currentUser(c).ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) stats(c echo.Context) error {
	herdID, err := herdParam(c)
	if err != nil {
		return err
	}
	span := models.TimeSpan(c.QueryParam("time_span"))
	switch span {
	case models.SpanAll, models.SpanWeek, models.SpanMonth, models.SpanYear:
	default:
		return common.NewError(common.ErrorValidation, "time_span must be one of: week, month, year")
	}
	st, err := s.milk.Stats(c.Request().Context(), currentUser(c).ID, herdID, span)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

func (s *Server) export(c echo.Context) error {
	herdID, err := herdParam(c)
	if err != nil {
		return err
	}
	out, err := s.milk.Export(c.Request().Context(), currentUser(c).ID, herdID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
