package service

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dilshat/sms-responder/config"
	"github.com/dilshat/sms-responder/conversation"
	"github.com/dilshat/sms-responder/dao"
	"github.com/dilshat/sms-responder/identity"
	"github.com/dilshat/sms-responder/model"
	"github.com/dilshat/sms-responder/notify"
	"github.com/dilshat/sms-responder/sms"
	"github.com/dilshat/sms-responder/worker"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	SMS_MAX_LEN  = 160
	SHORT_CODE   = "71010"
	PHONE        = "8455551000"
	JSON_STATUS  = `{"id":1,"external_id":"X1","to":"8455551000","text":"hi","template":"help","status":"DELIVRD","reports":[{"status":"DELIVRD","reported_at":"2024-05-01T10:00:00Z"}]}`
	REPORT_DATE  = "2024-05-01 10:00:00"
	INBOUND_DATE = "2024-05-01 09:59:00"
)

type mockSubmitter struct {
	ids []uint32
	err error
}

func (m *mockSubmitter) Submit(inboundId uint32) (worker.Job, error) {
	if m.err != nil {
		return worker.Job{}, m.err
	}
	m.ids = append(m.ids, inboundId)
	return worker.Job{Id: "job", InboundId: inboundId}, nil
}

type mockClient struct {
	sent []string
	n    int
}

func (m *mockClient) Send(ctx context.Context, creds sms.Credentials, from, to, text string) (string, error) {
	m.n++
	m.sent = append(m.sent, text)
	return "X" + string(rune('0'+m.n)), nil
}

func (m *mockClient) Lookup(ctx context.Context, number string) (string, error) {
	return "", sms.ErrLookupDisabled
}

type fixture struct {
	db        dao.Db
	service   Service
	submitter *mockSubmitter
	client    *mockClient
	templates *sms.Templates
	cleanup   func()
}

func newFixture(t *testing.T) fixture {
	dir, err := os.MkdirTemp(os.TempDir(), "storm")
	require.NoError(t, err)
	db, err := dao.Open(filepath.Join(dir, "storm.db"))
	require.NoError(t, err)

	carrierDao := dao.NewCarrierDao(db)
	_, err = carrierDao.Upsert(model.Carrier{Name: "verizon", Username: "u", Password: "p"})
	require.NoError(t, err)
	_, err = carrierDao.Upsert(model.Carrier{Name: "att"})
	require.NoError(t, err)
	siteDao := dao.NewSiteDao(db)
	require.NoError(t, siteDao.Save(model.Site{Id: 1, Name: "national"}))

	logger := zap.NewNop()
	templates, err := sms.NewTemplates("10Coupons")
	require.NoError(t, err)
	client := &mockClient{}
	submitter := &mockSubmitter{}
	outboundDao, responseDao := dao.NewOutboundDao(db), dao.NewResponseDao(db)
	subscriberDao, consumerDao := dao.NewSubscriberDao(db), dao.NewConsumerDao(db)

	srv := NewService(Deps{
		InboundDao:  dao.NewInboundDao(db),
		OutboundDao: outboundDao,
		ReportDao:   dao.NewReportDao(db),
		Resolver: identity.NewResolver(dao.NewPhoneDao(db), subscriberDao, consumerDao, carrierDao,
			nil, "verizon", logger),
		Handler: conversation.NewHandler(subscriberDao, consumerDao, siteDao,
			notify.New(config.SMTPConfig{}, "10Coupons", logger), 1, logger),
		Dispatcher: sms.NewDispatcher(client, templates, carrierDao, outboundDao, responseDao,
			rate.NewLimiter(rate.Inf, 1), SHORT_CODE, logger),
		Submitter:       submitter,
		Logger:          logger,
		NetworkAliases:  map[string]string{"cingular": "att"},
		SmsMaxLen:       SMS_MAX_LEN,
		ReportStoreDays: 90,
	})

	return fixture{
		db:        db,
		service:   srv,
		submitter: submitter,
		client:    client,
		templates: templates,
		cleanup: func() {
			db.Close()
			os.RemoveAll(dir)
		},
	}
}

func inboundParams(smsId, from, text string) url.Values {
	return url.Values{
		"smsto":   {SHORT_CODE},
		"smsfrom": {from},
		"smsdate": {INBOUND_DATE},
		"smsid":   {smsId},
		"smsmsg":  {text},
		"bits":    {"0"},
		"network": {"Verizon"},
	}
}

// converse receives and processes one message, returning the texts sent back.
func (f fixture) converse(t *testing.T, smsId, text string) []string {
	before := len(f.client.sent)
	require.NoError(t, f.service.ReceiveInbound(context.Background(), inboundParams(smsId, "1"+PHONE, text)))
	require.NotEmpty(t, f.submitter.ids)
	require.NoError(t, f.service.Process(context.Background(), f.submitter.ids[len(f.submitter.ids)-1]))
	return f.client.sent[before:]
}

func (f fixture) render(t *testing.T, template sms.Template, ctx map[string]string) string {
	text, err := f.templates.Render(template, ctx)
	require.NoError(t, err)
	return sms.ToASCII(text)
}

func TestService_Conversation(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()

	require.Equal(t, []string{f.render(t, sms.RequestZip, nil)}, f.converse(t, "1", "save"))
	require.Equal(t, []string{f.render(t, sms.RequestDoubleOptIn, nil)}, f.converse(t, "2", "12550"))
	require.Equal(t, []string{f.render(t, sms.OptInSuccess, map[string]string{"zip": "12550"})}, f.converse(t, "3", "Yes"))

	phone, err := dao.NewPhoneDao(f.db).GetOneByNumber(PHONE)
	require.NoError(t, err)
	sub, err := dao.NewSubscriberDao(f.db).GetOneById(phone.SubscriberId)
	require.NoError(t, err)
	require.Equal(t, "12550", sub.ZipPostal)
	require.Equal(t, []uint32{model.CouponAlerts}, sub.Subscriptions)

	require.Equal(t, []string{f.render(t, sms.OptOutSuccess, nil)}, f.converse(t, "4", "STOP"))

	sub, err = dao.NewSubscriberDao(f.db).GetOneById(phone.SubscriberId)
	require.NoError(t, err)
	require.Empty(t, sub.Subscriptions)

	stop, err := dao.NewInboundDao(f.db).GetOneBySmsId("4")
	require.NoError(t, err)
	links, err := dao.NewResponseDao(f.db).GetAllByInboundId(stop.Id)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.True(t, links[0].IsOptOut)
}

func TestService_ReceiveInboundNormalizes(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()
	params := inboundParams("abc", "18455551234", "")
	params.Set("network", "Cingular")

	require.NoError(t, f.service.ReceiveInbound(context.Background(), params))

	msg, err := dao.NewInboundDao(f.db).GetOneBySmsId("abc")
	require.NoError(t, err)
	require.Equal(t, "8455551234", msg.From)
	require.Equal(t, model.EmptyText, msg.Text)
	require.Equal(t, "att", msg.Network)
	require.Equal(t, time.Date(2024, 5, 1, 9, 59, 0, 0, time.UTC), msg.SentAt.UTC())
	require.Equal(t, []uint32{msg.Id}, f.submitter.ids)
}

func TestService_ReceiveInboundIsIdempotent(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()
	params := inboundParams("dup", PHONE, "help")

	require.NoError(t, f.service.ReceiveInbound(context.Background(), params))
	require.NoError(t, f.service.ReceiveInbound(context.Background(), params))

	require.Len(t, f.submitter.ids, 1)
	messages, err := dao.NewInboundDao(f.db).GetAllByFrom(PHONE)
	require.NoError(t, err)
	require.Len(t, messages, 1)
}

func TestService_ReceiveInboundRejects(t *testing.T) {
	long := make([]byte, SMS_MAX_LEN+1)
	for i := range long {
		long[i] = 'a'
	}

	tests := map[string]func(url.Values){
		"missing smsid":  func(p url.Values) { p.Del("smsid") },
		"missing bits":   func(p url.Values) { p.Del("bits") },
		"missing smsmsg": func(p url.Values) { p.Del("smsmsg") },
		"bad from":       func(p url.Values) { p.Set("smsfrom", "abc") },
		"short from":     func(p url.Values) { p.Set("smsfrom", "555123") },
		"bad bits":       func(p url.Values) { p.Set("bits", "x") },
		"too long":       func(p url.Values) { p.Set("smsmsg", string(long)) },
	}

	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			defer f.cleanup()
			params := inboundParams("1", PHONE, "help")
			modify(params)

			err := f.service.ReceiveInbound(context.Background(), params)

			require.True(t, IsInvalidPayload(err), "%v", err)
			require.Empty(t, f.submitter.ids)
			_, err = dao.NewInboundDao(f.db).GetOneBySmsId("1")
			require.True(t, dao.IsNotFound(err))
		})
	}
}

func TestService_ReceiveInboundQueueFailure(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()
	f.submitter.err = worker.ErrPoolStopped

	err := f.service.ReceiveInbound(context.Background(), inboundParams("1", PHONE, "help"))

	require.ErrorIs(t, err, worker.ErrPoolStopped)
	require.False(t, IsInvalidPayload(err))
	_, err = dao.NewInboundDao(f.db).GetOneBySmsId("1")
	require.True(t, dao.IsNotFound(err))
}

func TestService_ProcessIsIdempotent(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()
	require.Len(t, f.converse(t, "1", "help"), 1)

	require.NoError(t, f.service.Process(context.Background(), f.submitter.ids[0]))

	require.Len(t, f.client.sent, 1)
}

func TestService_ProcessWithoutReply(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()

	require.Empty(t, f.converse(t, "1", "bob@@nowhere"))
	_, err := dao.NewPhoneDao(f.db).GetOneByNumber(PHONE)
	require.True(t, dao.IsNotFound(err))

	require.Empty(t, f.converse(t, "2", "hello there"))
	_, err = dao.NewPhoneDao(f.db).GetOneByNumber(PHONE)
	require.NoError(t, err)
}

func TestService_ProcessMissingCredentials(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()
	params := inboundParams("1", PHONE, "help")
	params.Set("network", "att")
	require.NoError(t, f.service.ReceiveInbound(context.Background(), params))

	err := f.service.Process(context.Background(), f.submitter.ids[0])

	require.ErrorIs(t, err, sms.ErrMissingCredentials)
	require.Empty(t, f.client.sent)
}

func reportParams(text string) url.Values {
	return url.Values{
		"smsto":   {SHORT_CODE},
		"smsfrom": {PHONE},
		"smsdate": {REPORT_DATE},
		"smsmsg":  {text},
	}
}

func TestService_ReceiveReport(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()
	require.Len(t, f.converse(t, "1", "help"), 1)
	outboundDao := dao.NewOutboundDao(f.db)
	out, err := outboundDao.GetOneByExternalId("X1")
	require.NoError(t, err)

	require.NoError(t, f.service.ReceiveReport(context.Background(), reportParams("REPORT+X1+DELIVRD")))
	require.NoError(t, f.service.ReceiveReport(context.Background(), reportParams("REPORT X1 bogus late")))

	reports, err := dao.NewReportDao(f.db).GetAllByOutboundId(out.Id)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	require.Equal(t, model.DELIVRD, reports[0].Status)
	require.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), reports[0].ReportedAt.UTC())
	require.Equal(t, model.UNKNOWN, reports[1].Status)
	require.Equal(t, "bogus late", reports[1].Reason)

	//late report is stored, the final status is kept
	out, err = outboundDao.GetOneById(out.Id)
	require.NoError(t, err)
	require.Equal(t, model.DELIVRD, out.Status)
}

func TestService_ReceiveReportOutOfOrder(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()
	require.Len(t, f.converse(t, "1", "help"), 1)
	outboundDao := dao.NewOutboundDao(f.db)

	for _, step := range []struct {
		report   string
		expected string
	}{
		{"REPORT X1 ACCEPTD", model.ACCEPTD},
		{"REPORT X1 DELIVRD", model.DELIVRD},
		{"REPORT X1 ENROUTE", model.DELIVRD},
		{"REPORT X1 UNDELIV", model.DELIVRD},
	} {
		require.NoError(t, f.service.ReceiveReport(context.Background(), reportParams(step.report)))
		out, err := outboundDao.GetOneByExternalId("X1")
		require.NoError(t, err)
		require.Equal(t, step.expected, out.Status, step.report)
	}

	out, _ := outboundDao.GetOneByExternalId("X1")
	reports, err := dao.NewReportDao(f.db).GetAllByOutboundId(out.Id)
	require.NoError(t, err)
	require.Len(t, reports, 4)
}

func TestService_ProcessUnknownNetworkUsesFallbackCarrier(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()
	params := inboundParams("1", PHONE, "STOP")
	params.Set("network", "tmobile")
	require.NoError(t, f.service.ReceiveInbound(context.Background(), params))

	require.NoError(t, f.service.Process(context.Background(), f.submitter.ids[0]))

	require.Equal(t, []string{f.render(t, sms.OptOutSuccess, nil)}, f.client.sent)
	phone, err := dao.NewPhoneDao(f.db).GetOneByNumber(PHONE)
	require.NoError(t, err)
	verizon, err := dao.NewCarrierDao(f.db).GetOneByName("verizon")
	require.NoError(t, err)
	require.Equal(t, verizon.Id, phone.CarrierId)
}

func TestService_ReceiveReportRejects(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()

	few := reportParams("REPORT X1 DELIVRD")
	few.Del("smsto")
	noDate := reportParams("REPORT X1 DELIVRD")
	noDate.Del("smsdate")
	noDate.Set("note", "x")

	for name, params := range map[string]url.Values{
		"unknown message":      reportParams("REPORT X9 DELIVRD"),
		"malformed":            reportParams("DELIVRD"),
		"not enough params":    few,
		"missing date":         noDate,
		"empty message":        reportParams(""),
		"not a report message": reportParams("HELLO X1 DELIVRD"),
	} {
		t.Run(name, func(t *testing.T) {
			err := f.service.ReceiveReport(context.Background(), params)
			require.True(t, IsInvalidPayload(err), "%v", err)
		})
	}

	reports, err := dao.NewReportDao(f.db).GetAll()
	require.NoError(t, err)
	require.Empty(t, reports)
}

func TestParseReport(t *testing.T) {
	id, status, reason, err := parseReport("report+A1+undeliv+absent+subscriber")
	require.NoError(t, err)
	require.Equal(t, "A1", id)
	require.Equal(t, model.UNDELIV, status)
	require.Equal(t, "absent subscriber", reason)
}

func TestParseDate(t *testing.T) {
	received := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), parseDate("2024-05-01 10:00:00", received))
	require.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), parseDate("2024-05-01T10:00", received))
	require.Equal(t, received, parseDate("yesterday", received))
}

type mockOutboundDao struct {
	dao.OutboundDao
}

func (m mockOutboundDao) GetOneById(id uint32) (model.OutboundMessage, error) {
	return model.OutboundMessage{Id: id, ExternalId: "X1", To: PHONE, Text: "hi", Template: "help", Status: model.DELIVRD}, nil
}

type mockReportDao struct {
	dao.ReportDao
	cleanupDays int
}

func (m *mockReportDao) GetAllByOutboundId(outboundId uint32) ([]model.DeliveryReport, error) {
	return []model.DeliveryReport{{
		OutboundId: outboundId,
		Status:     model.DELIVRD,
		ReportedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}}, nil
}

func (m *mockReportDao) RemoveOlderThanDays(days int) error {
	m.cleanupDays = days
	return nil
}

func TestService_CheckStatusOfOutbound(t *testing.T) {
	srv := NewService(Deps{OutboundDao: mockOutboundDao{}, ReportDao: &mockReportDao{}, Logger: zap.NewNop()})

	status, err := srv.CheckStatusOfOutbound(1)
	require.NoError(t, err)

	b, err := json.Marshal(status)
	require.NoError(t, err)
	require.JSONEq(t, JSON_STATUS, string(b))
}

func TestService_CleanupReports(t *testing.T) {
	reportDao := &mockReportDao{}
	srv := NewService(Deps{ReportDao: reportDao, ReportStoreDays: 30, Logger: zap.NewNop()})

	require.NoError(t, srv.CleanupReports())
	require.Equal(t, 30, reportDao.cleanupDays)
}
