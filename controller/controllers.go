package controller

import (
	"net/http"
	"strconv"

	"github.com/dilshat/sms-responder/dao"
	"github.com/dilshat/sms-responder/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	okBody          = "OK"
	malfunctionBody = "System malfunction. Please, try later"
)

// GetInboundFunc handles mobile originated messages pushed by the gateway.
// Duplicates are answered with OK as well.
//
// ReceiveInbound godoc
// @Summary Receive inbound sms
// @Description Accepts a mobile originated message and queues it for processing
// @Produce plain
// @Param smsto query string true "Short code"
// @Param smsfrom query string true "Sender phone"
// @Param smsdate query string true "Sent date"
// @Param smsid query string true "Gateway message id"
// @Param smsmsg query string true "Message text"
// @Param bits query string true "Encoding bits"
// @Param network query string false "Sender network"
// @Success 200 {string} string "OK"
// @Failure 400 "error description"
// @Failure 500 "system malfunction"
// @Router /sms/inbound [get]
func GetInboundFunc(srv service.Service, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := srv.ReceiveInbound(c.Request().Context(), c.QueryParams())
		return respond(c, logger, err)
	}
}

// GetReportFunc handles delivery reports of outbound messages.
//
// ReceiveReport godoc
// @Summary Receive delivery report
// @Description Stores a delivery report of a sent reply
// @Produce plain
// @Param smsto query string false "Short code"
// @Param smsfrom query string true "Recipient phone"
// @Param smsdate query string true "Report date"
// @Param smsmsg query string true "Report text, REPORT <id> <status> [reason]"
// @Success 200 {string} string "OK"
// @Failure 400 "error description"
// @Failure 500 "system malfunction"
// @Router /sms/report [get]
func GetReportFunc(srv service.Service, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := srv.ReceiveReport(c.Request().Context(), c.QueryParams())
		return respond(c, logger, err)
	}
}

// GetCheckOutboundFunc returns an outbound message with its delivery reports.
//
// CheckOutbound godoc
// @Summary Check outbound sms
// @Description Returns a sent reply with its delivery reports
// @Produce json
// @Param id path int true "Outbound message id"
// @Success 200 {object} dto.OutboundStatus
// @Failure 400 "error description"
// @Failure 404 "message not found"
// @Router /sms/outbound/{id} [get]
func GetCheckOutboundFunc(srv service.Service, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")

		id64, err := strconv.ParseUint(id, 10, 32)
		if err != nil {
			return c.String(http.StatusBadRequest, "Invalid id "+id)
		}

		status, err := srv.CheckStatusOfOutbound(uint32(id64))
		if err != nil {
			if dao.IsNotFound(err) {
				return c.String(http.StatusNotFound, "Message not found "+id)
			}
			logger.Error("check outbound", zap.Error(err))
			return c.String(http.StatusInternalServerError, malfunctionBody)
		}

		return c.JSON(http.StatusOK, status)
	}
}

// Health godoc
// @Summary Health check
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func Health(c echo.Context) error {
	return c.String(http.StatusOK, okBody)
}

func respond(c echo.Context, logger *zap.Logger, err error) error {
	if err == nil {
		return c.String(http.StatusOK, okBody)
	}
	if service.IsInvalidPayload(err) {
		return c.String(http.StatusBadRequest, err.Error())
	}

	logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.String(http.StatusInternalServerError, malfunctionBody)
}
