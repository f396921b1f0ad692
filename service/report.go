package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dilshat/sms-responder/dao"
	"github.com/dilshat/sms-responder/model"
	"github.com/dilshat/sms-responder/service/dto"
	"go.uber.org/zap"
)

const (
	reportPrefix    = "REPORT"
	minReportParams = 4
)

func (s *service) ReceiveReport(ctx context.Context, params url.Values) error {
	if len(params) < minReportParams {
		return NewInvalidPayloadError("Not enough parameters")
	}
	if err := requireParams(params, "smsfrom", "smsdate", "smsmsg"); err != nil {
		return err
	}

	in := dto.Report{
		From: params.Get("smsfrom"),
		Date: params.Get("smsdate"),
		Text: params.Get("smsmsg"),
	}
	if err := s.validateStruct(in); err != nil {
		return err
	}

	externalId, status, reason, err := parseReport(in.Text)
	if err != nil {
		return err
	}

	outbound, err := s.outboundDao.GetOneByExternalId(externalId)
	if dao.IsNotFound(err) {
		return NewInvalidPayloadError("Unknown message " + externalId)
	}
	if err != nil {
		return err
	}

	report, err := s.reportDao.Create(model.DeliveryReport{
		OutboundId: outbound.Id,
		ExternalId: externalId,
		Status:     status,
		Reason:     reason,
		Raw:        in.Text,
		ReportedAt: parseDate(in.Date, time.Now()),
	})
	if err != nil {
		return fmt.Errorf("store report: %w", err)
	}

	updated, err := s.outboundDao.UpdateStatus(outbound.Id, status)
	if err != nil {
		return fmt.Errorf("update outbound status: %w", err)
	}

	s.logger.Info("delivery report", zap.Uint32("outbound", outbound.Id), zap.Uint32("report", report.Id),
		zap.String("status", status), zap.Bool("status_updated", updated))

	return nil
}

// parseReport splits "REPORT <externalId> <STATUS> [reason]". Tokens may be
// separated by spaces or plus signs.
func parseReport(text string) (externalId, status, reason string, err error) {
	tokens := strings.Fields(strings.ReplaceAll(text, "+", " "))
	if len(tokens) < 3 || !strings.EqualFold(tokens[0], reportPrefix) {
		return "", "", "", NewInvalidPayloadError("Malformed report")
	}

	externalId = tokens[1]
	status = strings.ToUpper(tokens[2])
	reason = strings.Join(tokens[3:], " ")

	if !model.IsReportStatus(status) {
		reason = strings.TrimSpace(tokens[2] + " " + reason)
		status = model.UNKNOWN
	}

	return externalId, status, reason, nil
}

func (s *service) CheckStatusOfOutbound(id uint32) (dto.OutboundStatus, error) {
	msg, err := s.outboundDao.GetOneById(id)
	if err != nil {
		return dto.OutboundStatus{}, err
	}
	reports, err := s.reportDao.GetAllByOutboundId(msg.Id)
	if err != nil && !dao.IsNotFound(err) {
		return dto.OutboundStatus{}, err
	}

	status := dto.OutboundStatus{
		Id:         msg.Id,
		ExternalId: msg.ExternalId,
		To:         msg.To,
		Text:       msg.Text,
		Template:   msg.Template,
		Status:     msg.Status,
	}
	reportStatuses := []dto.ReportStatus{}
	for _, r := range reports {
		reportStatuses = append(reportStatuses, dto.ReportStatus{
			Status:     r.Status,
			Reason:     r.Reason,
			ReportedAt: r.ReportedAt.Format(time.RFC3339),
		})
	}
	status.Reports = reportStatuses

	return status, nil
}
