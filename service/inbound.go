package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dilshat/sms-responder/conversation"
	"github.com/dilshat/sms-responder/dao"
	"github.com/dilshat/sms-responder/intent"
	"github.com/dilshat/sms-responder/log"
	"github.com/dilshat/sms-responder/model"
	"github.com/dilshat/sms-responder/service/dto"
	"github.com/dilshat/sms-responder/util"
	"go.uber.org/zap"
)

var requiredInboundParams = []string{"smsto", "smsfrom", "smsdate", "smsid", "smsmsg", "bits"}

func (s *service) ReceiveInbound(ctx context.Context, params url.Values) error {
	if err := requireParams(params, requiredInboundParams...); err != nil {
		return err
	}

	in := dto.Inbound{
		To:         util.NormalizePhone(params.Get("smsto")),
		From:       util.NormalizePhone(params.Get("smsfrom")),
		Date:       params.Get("smsdate"),
		SmsId:      strings.TrimSpace(params.Get("smsid")),
		Text:       params.Get("smsmsg"),
		Bits:       params.Get("bits"),
		Network:    params.Get("network"),
		Udh:        params.Get("smsudh"),
		Smsc:       params.Get("smsc"),
		Ucs2:       params.Get("smsucs2"),
		Note:       params.Get("note"),
		Subaccount: params.Get("subaccount"),
		Report:     params.Get("report"),
		Vp:         params.Get("vp"),
	}

	if len([]rune(in.Text)) > s.smsMaxLen {
		return NewInvalidPayloadError("Message too long. Must be <= " + strconv.Itoa(s.smsMaxLen) + " symbols in length")
	}
	if in.Text == "" {
		in.Text = model.EmptyText
	}

	if err := s.validateStruct(in); err != nil {
		return err
	}

	if existing, err := s.inboundDao.GetOneBySmsId(in.SmsId); err == nil {
		s.logger.Info("duplicate inbound", zap.String("sms_id", in.SmsId), zap.Uint32("inbound", existing.Id))
		return nil
	} else if !dao.IsNotFound(err) {
		return err
	}

	now := time.Now()
	msg, err := s.inboundDao.Create(model.InboundMessage{
		SmsId:      in.SmsId,
		From:       in.From,
		To:         in.To,
		Text:       in.Text,
		Network:    s.network(in.Network),
		Bits:       in.Bits,
		Udh:        in.Udh,
		Smsc:       in.Smsc,
		Ucs2:       in.Ucs2,
		Note:       in.Note,
		Subaccount: in.Subaccount,
		Report:     in.Report,
		Vp:         in.Vp,
		SentAt:     parseDate(in.Date, now),
	})
	if dao.IsDuplicate(err) {
		s.logger.Info("duplicate inbound", zap.String("sms_id", in.SmsId))
		return nil
	}
	if err != nil {
		return fmt.Errorf("store inbound: %w", err)
	}

	s.logger.Info("inbound received", zap.Uint32("inbound", msg.Id), log.Phone("from", msg.From),
		zap.String("network", msg.Network))

	job, err := s.submitter.Submit(msg.Id)
	if err != nil {
		//gateway redelivery will bring the message back
		log.WarnIfErr(s.logger, "remove unqueued inbound", s.inboundDao.Remove(msg.Id))
		return fmt.Errorf("queue inbound %d: %w", msg.Id, err)
	}
	s.logger.Debug("inbound queued", zap.Uint32("inbound", msg.Id), zap.String("job", job.Id))

	return nil
}

// network lower-cases the gateway network name and maps legacy names to current ones.
func (s *service) network(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := s.networkAliases[name]; ok {
		return alias
	}
	return name
}

func (s *service) Process(ctx context.Context, inboundId uint32) error {
	inbound, err := s.inboundDao.GetOneById(inboundId)
	if err != nil {
		return fmt.Errorf("get inbound %d: %w", inboundId, err)
	}

	in := intent.Classify(inbound.Text)
	if in.Kind == intent.Discard {
		s.logger.Info("inbound discarded", zap.Uint32("inbound", inbound.Id))
		return nil
	}

	zipHint := ""
	if in.Kind == intent.ZipCode {
		zipHint = in.Zip
	}
	res, err := s.resolver.Resolve(ctx, inbound.From, inbound.Network, zipHint)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}

	outcome, err := s.handler.Handle(ctx, conversation.State{Inbound: inbound, Intent: in, Identity: res})
	if err != nil {
		return err
	}

	s.logger.Info("inbound handled", zap.Uint32("inbound", inbound.Id), zap.Stringer("intent", in.Kind),
		zap.Int("replies", len(outcome.Replies)))

	for _, reply := range outcome.Replies {
		if _, err := s.dispatcher.Dispatch(ctx, inbound, res.Phone, reply); err != nil {
			return fmt.Errorf("dispatch %s: %w", reply.Template, err)
		}
	}

	return nil
}
