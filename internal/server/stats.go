package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"aram-stats/internal/domain"
	"aram-stats/internal/normalize"
	"aram-stats/internal/repository"
	"aram-stats/internal/service"
	"aram-stats/internal/source"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const ServiceName = "aram.v1.AramStats"

// ServicePath is the mux prefix every procedure lives under.
const ServicePath = "/" + ServiceName + "/"

type StatsServer struct {
	svc    *service.StatsService
	logger zerolog.Logger
}

func NewStatsServer(svc *service.StatsService, logger zerolog.Logger) *StatsServer {
	return &StatsServer{svc: svc, logger: logger}
}

// Handler mounts every procedure and returns the prefix to register it
// under, in the shape of a generated connect handler constructor.
func (s *StatsServer) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	mux := http.NewServeMux()

	register := func(method string, h http.Handler) {
		mux.Handle(ServicePath+method, h)
	}

	register("GetOverview", connect.NewUnaryHandler(ServicePath+"GetOverview", s.GetOverview, opts...))
	register("GetDashboard", connect.NewUnaryHandler(ServicePath+"GetDashboard", s.GetDashboard, opts...))
	register("ListChampions", connect.NewUnaryHandler(ServicePath+"ListChampions", s.ListChampions, opts...))
	register("GetChampionStats", connect.NewUnaryHandler(ServicePath+"GetChampionStats", s.GetChampionStats, opts...))
	register("GetItemStats", connect.NewUnaryHandler(ServicePath+"GetItemStats", s.GetItemStats, opts...))
	register("GetCoreComboStats", connect.NewUnaryHandler(ServicePath+"GetCoreComboStats", s.GetCoreComboStats, opts...))
	register("GetRuneStats", connect.NewUnaryHandler(ServicePath+"GetRuneStats", s.GetRuneStats, opts...))
	register("GetSpellStats", connect.NewUnaryHandler(ServicePath+"GetSpellStats", s.GetSpellStats, opts...))
	register("GetSynergy", connect.NewUnaryHandler(ServicePath+"GetSynergy", s.GetSynergy, opts...))
	register("GetChampionDetail", connect.NewUnaryHandler(ServicePath+"GetChampionDetail", s.GetChampionDetail, opts...))
	register("ListRows", connect.NewUnaryHandler(ServicePath+"ListRows", s.ListRows, opts...))
	register("ListDatasets", connect.NewUnaryHandler(ServicePath+"ListDatasets", s.ListDatasets, opts...))
	register("ImportDataset", connect.NewUnaryHandler(ServicePath+"ImportDataset", s.ImportDataset, opts...))
	register("LoadDataset", connect.NewUnaryHandler(ServicePath+"LoadDataset", s.LoadDataset, opts...))
	register("DeleteDataset", connect.NewUnaryHandler(ServicePath+"DeleteDataset", s.DeleteDataset, opts...))

	return ServicePath, mux
}

func (s *StatsServer) GetOverview(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[OverviewResponse], error) {
	ov, err := s.svc.Overview(ctx)
	if err != nil {
		return nil, s.fail(ctx, "GetOverview", err)
	}
	resp := toOverview(ov)
	return connect.NewResponse(&resp), nil
}

func (s *StatsServer) GetDashboard(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[DashboardResponse], error) {
	d, err := s.svc.Dashboard(ctx)
	if err != nil {
		return nil, s.fail(ctx, "GetDashboard", err)
	}
	return connect.NewResponse(toDashboard(d)), nil
}

func (s *StatsServer) ListChampions(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ChampionsResponse], error) {
	names, err := s.svc.ChampionNames(ctx)
	if err != nil {
		return nil, s.fail(ctx, "ListChampions", err)
	}
	return connect.NewResponse(&ChampionsResponse{Champions: names}), nil
}

func (s *StatsServer) GetChampionStats(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StatsResponse], error) {
	rows, err := s.svc.Champions(ctx)
	return s.stats(ctx, "GetChampionStats", rows, err)
}

func (s *StatsServer) GetItemStats(ctx context.Context, req *connect.Request[ItemStatsRequest]) (*connect.Response[StatsResponse], error) {
	allow := req.Msg.Allow
	if req.Msg.Boots && len(allow) == 0 {
		rows, err := s.svc.Boots(ctx)
		return s.stats(ctx, "GetItemStats", rows, err)
	}
	rows, err := s.svc.Items(ctx, allow)
	return s.stats(ctx, "GetItemStats", rows, err)
}

func (s *StatsServer) GetCoreComboStats(ctx context.Context, req *connect.Request[CoreComboRequest]) (*connect.Response[StatsResponse], error) {
	rows, err := s.svc.CoreCombos(ctx, req.Msg.Slots)
	return s.stats(ctx, "GetCoreComboStats", rows, err)
}

func (s *StatsServer) GetRuneStats(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StatsResponse], error) {
	rows, err := s.svc.Runes(ctx)
	return s.stats(ctx, "GetRuneStats", rows, err)
}

func (s *StatsServer) GetSpellStats(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StatsResponse], error) {
	rows, err := s.svc.Spells(ctx)
	return s.stats(ctx, "GetSpellStats", rows, err)
}

func (s *StatsServer) GetSynergy(ctx context.Context, req *connect.Request[SynergyRequest]) (*connect.Response[StatsResponse], error) {
	rows, err := s.svc.Synergy(ctx, req.Msg.Champion, req.Msg.TopN)
	return s.stats(ctx, "GetSynergy", rows, err)
}

func (s *StatsServer) GetChampionDetail(ctx context.Context, req *connect.Request[ChampionRequest]) (*connect.Response[ChampionDetailResponse], error) {
	d, err := s.svc.ChampionDetail(ctx, req.Msg.Champion)
	if err != nil {
		return nil, s.fail(ctx, "GetChampionDetail", err)
	}
	return connect.NewResponse(toDetail(d)), nil
}

func (s *StatsServer) ListRows(ctx context.Context, req *connect.Request[RowsRequest]) (*connect.Response[RowsResponse], error) {
	page, err := s.svc.Rows(ctx, req.Msg.Offset, req.Msg.Limit)
	if err != nil {
		return nil, s.fail(ctx, "ListRows", err)
	}

	resp := &RowsResponse{Total: page.Total, Rows: make([]Participant, len(page.Rows))}
	for i, p := range page.Rows {
		resp.Rows[i] = toParticipant(p)
	}
	return connect.NewResponse(resp), nil
}

func (s *StatsServer) ListDatasets(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[DatasetsResponse], error) {
	list, err := s.svc.Datasets(ctx)
	if err != nil {
		return nil, s.fail(ctx, "ListDatasets", err)
	}

	resp := &DatasetsResponse{Datasets: make([]Dataset, len(list))}
	for i, ds := range list {
		resp.Datasets[i] = toDataset(ds)
	}
	return connect.NewResponse(resp), nil
}

func (s *StatsServer) ImportDataset(ctx context.Context, req *connect.Request[ImportRequest]) (*connect.Response[ImportResponse], error) {
	msg := req.Msg
	if (msg.Location == "") == (msg.CSV == "") {
		return nil, s.fail(ctx, "ImportDataset", fmt.Errorf("%w: exactly one of location or csv is required", service.ErrInvalidInput))
	}

	var (
		ds      *domain.Dataset
		created bool
		err     error
	)
	if msg.CSV != "" {
		ds, created, err = s.svc.ImportCSV(ctx, msg.Name, strings.NewReader(msg.CSV))
	} else {
		var location string
		if location, err = s.svc.ClientLocation(msg.Location); err == nil {
			name := msg.Name
			if name == "" {
				name = msg.Location
			}
			ds, created, err = s.svc.Import(ctx, name, location)
		}
	}
	if err != nil {
		return nil, s.fail(ctx, "ImportDataset", err)
	}
	return connect.NewResponse(&ImportResponse{Dataset: toDataset(*ds), Created: created}), nil
}

func (s *StatsServer) LoadDataset(ctx context.Context, req *connect.Request[LoadRequest]) (*connect.Response[OverviewResponse], error) {
	msg := req.Msg

	chosen := 0
	for _, set := range []bool{msg.DatasetID != "", msg.Location != "", msg.Postgres} {
		if set {
			chosen++
		}
	}
	if chosen != 1 {
		return nil, s.fail(ctx, "LoadDataset", fmt.Errorf("%w: exactly one of dataset_id, location or postgres is required", service.ErrInvalidInput))
	}

	var (
		ov  domain.Overview
		err error
	)
	switch {
	case msg.DatasetID != "":
		ov, err = s.svc.LoadDataset(ctx, msg.DatasetID)
	case msg.Location != "":
		var location string
		if location, err = s.svc.ClientLocation(msg.Location); err == nil {
			ov, err = s.svc.LoadLocation(ctx, location)
		}
	default:
		ov, err = s.svc.LoadPostgres(ctx)
	}
	if err != nil {
		return nil, s.fail(ctx, "LoadDataset", err)
	}
	resp := toOverview(ov)
	return connect.NewResponse(&resp), nil
}

func (s *StatsServer) DeleteDataset(ctx context.Context, req *connect.Request[DatasetRequest]) (*connect.Response[Empty], error) {
	if req.Msg.DatasetID == "" {
		return nil, s.fail(ctx, "DeleteDataset", fmt.Errorf("%w: dataset_id is required", service.ErrInvalidInput))
	}
	if err := s.svc.DeleteDataset(ctx, req.Msg.DatasetID); err != nil {
		return nil, s.fail(ctx, "DeleteDataset", err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *StatsServer) stats(ctx context.Context, method string, rows []domain.StatRow, err error) (*connect.Response[StatsResponse], error) {
	if err != nil {
		return nil, s.fail(ctx, method, err)
	}
	return connect.NewResponse(&StatsResponse{Rows: toStatRows(rows)}), nil
}

// fail logs err on the request logger and maps it to a connect code.
func (s *StatsServer) fail(ctx context.Context, method string, err error) error {
	code := errorCode(err)

	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &s.logger
	}
	ev := logger.Warn()
	if code == connect.CodeInternal {
		ev = logger.Error()
	}
	ev.Err(err).Str("method", method).Str("code", code.String()).Msg("request failed")

	return connect.NewError(code, err)
}

func errorCode(err error) connect.Code {
	switch {
	case errors.Is(err, service.ErrNoDataset), errors.Is(err, service.ErrNoPostgres):
		return connect.CodeFailedPrecondition
	case errors.Is(err, service.ErrUnknownSlot),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, normalize.ErrMissingColumn),
		errors.Is(err, source.ErrEmptyInput):
		return connect.CodeInvalidArgument
	case errors.Is(err, service.ErrLocationDenied):
		return connect.CodePermissionDenied
	case errors.Is(err, repository.ErrDatasetNotFound), errors.Is(err, fs.ErrNotExist):
		return connect.CodeNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}

func formatVersion(v uint64) string {
	return fmt.Sprintf("%016x", v)
}
