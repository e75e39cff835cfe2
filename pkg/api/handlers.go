package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/l1/msgs"
	"github.com/robotalks/pursuit/pkg/sim/bots/tracker"
	"github.com/robotalks/pursuit/pkg/sim/driver"
	"github.com/robotalks/pursuit/pkg/sim/export"
)

// MsgpackContentType is the media type of msgpack bodies.
const MsgpackContentType = "application/msgpack"

type targetRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type sourceRequest struct {
	Source string `json:"source"`
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleStatus returns the simulation status.
func (s *Server) HandleStatus(c echo.Context) error {
	status, err := s.status(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

// HandleStart starts a run.
func (s *Server) HandleStart(c echo.Context) error {
	return s.lifecycle(c, &msgs.SimStart{})
}

// HandlePause pauses the run.
func (s *Server) HandlePause(c echo.Context) error {
	return s.lifecycle(c, &msgs.SimPause{})
}

// HandleResume resumes the run.
func (s *Server) HandleResume(c echo.Context) error {
	return s.lifecycle(c, &msgs.SimResume{})
}

// HandleReset resets the simulation.
func (s *Server) HandleReset(c echo.Context) error {
	return s.lifecycle(c, &msgs.SimReset{})
}

// HandleSetTarget sets a manual target.
func (s *Server) HandleSetTarget(c echo.Context) error {
	var req targetRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid target", err)
	}
	if req.X == nil {
		return NewValidationError("x")
	}
	if req.Y == nil {
		return NewValidationError("y")
	}
	if _, err := s.do(c, &msgs.SimSetTarget{X: *req.X, Y: *req.Y}); err != nil {
		return conflict(err)
	}
	return s.HandleStatus(c)
}

// HandleSelectSource switches the target source.
func (s *Server) HandleSelectSource(c echo.Context) error {
	var req sourceRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid source", err)
	}
	if _, err := driver.ParseSource(req.Source); err != nil {
		return NewBadRequestError("invalid source", err)
	}
	if _, err := s.do(c, &msgs.SimSelectSource{Source: req.Source}); err != nil {
		return badRequest(err)
	}
	return s.HandleStatus(c)
}

// HandleConfigure replaces the setup.
func (s *Server) HandleConfigure(c echo.Context) error {
	var setup driver.Setup
	if err := c.Bind(&setup); err != nil {
		return NewBadRequestError("invalid setup", err)
	}
	if err := setup.Validate(); err != nil {
		return NewBadRequestError("invalid setup", err)
	}
	if _, err := s.do(c, &msgs.SimConfigure{Setup: tracker.SetupToMsg(setup)}); err != nil {
		return badRequest(err)
	}
	return s.HandleStatus(c)
}

// HandleExportCSV downloads the session log.
func (s *Server) HandleExportCSV(c echo.Context) error {
	log, err := s.log(c, &msgs.SimLogQuery{})
	if err != nil {
		return err
	}
	name := "pursuit.csv"
	if log.RunID != "" {
		name = "pursuit-" + log.RunID + ".csv"
	}
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, export.CSVContentType)
	resp.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	resp.WriteHeader(http.StatusOK)
	return export.WriteCSV(resp, tracker.RecordsFromMsg(log.Records))
}

// HandleWindow returns the plot window in msgpack. The optional limit
// query keeps only the most recent records.
func (s *Server) HandleWindow(c echo.Context) error {
	query := &msgs.SimLogQuery{Window: true}
	if val := c.QueryParam("limit"); val != "" {
		limit, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return NewValidationError("limit")
		}
		query.Limit = uint32(limit)
	}
	log, err := s.log(c, query)
	if err != nil {
		return err
	}
	data, err := export.EncodeWindow(log.RunID, log.Steps, tracker.RecordsFromMsg(log.Records))
	if err != nil {
		return NewInternalError("encode window", err)
	}
	return c.Blob(http.StatusOK, MsgpackContentType, data)
}

func (s *Server) lifecycle(c echo.Context, cmd fx.Message) error {
	if _, err := s.do(c, cmd); err != nil {
		return conflict(err)
	}
	return s.HandleStatus(c)
}

func (s *Server) status(c echo.Context) (*msgs.SimStatus, error) {
	reply, err := s.do(c, &msgs.SimStatusQuery{})
	if err != nil {
		return nil, unavailable(err)
	}
	r, ok := reply.(*msgs.SimStatusReply)
	if !ok || r.Status == nil {
		return nil, NewInternalError("unexpected reply", fmt.Errorf("%T", reply))
	}
	return r.Status, nil
}

func (s *Server) log(c echo.Context, query *msgs.SimLogQuery) (*msgs.SimLog, error) {
	reply, err := s.do(c, query)
	if err != nil {
		return nil, unavailable(err)
	}
	log, ok := reply.(*msgs.SimLog)
	if !ok {
		return nil, NewInternalError("unexpected reply", fmt.Errorf("%T", reply))
	}
	return log, nil
}

func (s *Server) do(c echo.Context, cmd fx.Message) (fx.Message, error) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.Timeout)
	defer cancel()
	return l1.WaitResult(ctx, s.Conn.DoCommand(cmd))
}

func conflict(err error) error {
	var cmdErr *msgs.CommandErr
	if errors.As(err, &cmdErr) {
		return NewConflictError(cmdErr.Message)
	}
	return unavailable(err)
}

func badRequest(err error) error {
	var cmdErr *msgs.CommandErr
	if errors.As(err, &cmdErr) {
		return NewBadRequestError(cmdErr.Message, nil)
	}
	return unavailable(err)
}

func unavailable(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("simulator did not respond")
	}
	return NewInternalError("command failed", err)
}
