package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/service"
)

type VehicleHandler struct {
	vehicleSvc service.VehicleService
}

func NewVehicleHandler(vehicleSvc service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleSvc: vehicleSvc}
}

func (h *VehicleHandler) CreateVehicle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := newFields(req)
	v := &domain.Vehicle{
		Make:             f.str("make"),
		Model:            f.str("model"),
		Year:             f.int32("year"),
		PlateNumber:      f.str("plate_number"),
		PricePerDayCents: f.amount("price_per_day"),
	}
	if f.has("status") {
		v.Status, err = ParseVehicleStatus(f.str("status"))
		if err != nil {
			return nil, mapError(ctx, err)
		}
	}
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}

	if err := h.vehicleSvc.CreateVehicle(ctx, actor, v); err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"vehicle": MapDomainVehicleToProto(v)})
}

func (h *VehicleHandler) GetVehicle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	id := f.id("id")
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}
	v, err := h.vehicleSvc.GetVehicle(ctx, id)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"vehicle": MapDomainVehicleToProto(v)})
}

func (h *VehicleHandler) ListVehicles(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	page, pageSize := f.int32("page"), f.int32("page_size")
	var st domain.VehicleStatus
	if s := f.str("status"); s != "" {
		var err error
		if st, err = ParseVehicleStatus(s); err != nil {
			return nil, mapError(ctx, err)
		}
	}
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}

	vehicles, count, err := h.vehicleSvc.ListVehicles(ctx, st, page, pageSize)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	items := make([]any, 0, len(vehicles))
	for i := range vehicles {
		items = append(items, MapDomainVehicleToProto(&vehicles[i]))
	}
	return toStruct(map[string]any{"vehicles": items, "total_count": count})
}

func (h *VehicleHandler) UpdateVehicle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := newFields(req)
	id := f.id("id")
	update := domain.VehicleUpdate{
		Make:             f.optStr("make"),
		Model:            f.optStr("model"),
		Year:             f.optInt32("year"),
		PlateNumber:      f.optStr("plate_number"),
		PricePerDayCents: f.optAmount("price_per_day"),
	}
	if f.has("status") {
		st, err := ParseVehicleStatus(f.str("status"))
		if err != nil {
			return nil, mapError(ctx, err)
		}
		update.Status = &st
	}
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}

	v, err := h.vehicleSvc.UpdateVehicle(ctx, actor, id, update)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"vehicle": MapDomainVehicleToProto(v)})
}

func (h *VehicleHandler) DeleteVehicle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := newFields(req)
	id := f.id("id")
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}
	if err := h.vehicleSvc.DeleteVehicle(ctx, actor, id); err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"success": true})
}
