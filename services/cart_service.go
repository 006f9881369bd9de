// mobilecart/services/cart_service.go

// Package services exposes the cart store over gRPC.
package services

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/norun9/mobilecart/cartstore"
)

// CartServiceName is the fully-qualified gRPC service name.
const CartServiceName = "mobilecart.CartService"

type GetCartRequest struct{}

type AddToCartRequest struct {
	Product cartstore.Product `json:"product"`
}

// ItemRequest addresses one cart line by product id.
type ItemRequest struct {
	ID string `json:"id"`
}

type ClearCartRequest struct{}

// CartResponse carries the published cart after the call.
type CartResponse struct {
	Items cartstore.Cart `json:"items"`
}

// CartServiceServer is the server API for mobilecart.CartService.
type CartServiceServer interface {
	GetCart(context.Context, *GetCartRequest) (*CartResponse, error)
	AddToCart(context.Context, *AddToCartRequest) (*CartResponse, error)
	Increment(context.Context, *ItemRequest) (*CartResponse, error)
	Decrement(context.Context, *ItemRequest) (*CartResponse, error)
	ClearCart(context.Context, *ClearCartRequest) (*CartResponse, error)
}

// CartService implements CartServiceServer. It resolves the store from the
// request context, so it must be served behind ScopeInterceptor.
type CartService struct{}

// NewCartServiceServer constructor
func NewCartServiceServer() *CartService {
	return &CartService{}
}

var _ CartServiceServer = (*CartService)(nil)

func (s *CartService) GetCart(ctx context.Context, _ *GetCartRequest) (*CartResponse, error) {
	return &CartResponse{Items: cartstore.FromContext(ctx).Products()}, nil
}

func (s *CartService) AddToCart(ctx context.Context, req *AddToCartRequest) (*CartResponse, error) {
	store := cartstore.FromContext(ctx)
	if err := store.AddToCart(ctx, req.Product); err != nil {
		return nil, toStatus("AddToCart", err)
	}
	return &CartResponse{Items: store.Products()}, nil
}

func (s *CartService) Increment(ctx context.Context, req *ItemRequest) (*CartResponse, error) {
	store := cartstore.FromContext(ctx)
	if err := store.Increment(ctx, req.ID); err != nil {
		return nil, toStatus("Increment", err)
	}
	return &CartResponse{Items: store.Products()}, nil
}

func (s *CartService) Decrement(ctx context.Context, req *ItemRequest) (*CartResponse, error) {
	store := cartstore.FromContext(ctx)
	if err := store.Decrement(ctx, req.ID); err != nil {
		return nil, toStatus("Decrement", err)
	}
	return &CartResponse{Items: store.Products()}, nil
}

func (s *CartService) ClearCart(ctx context.Context, _ *ClearCartRequest) (*CartResponse, error) {
	store := cartstore.FromContext(ctx)
	if err := store.Clear(ctx); err != nil {
		return nil, toStatus("ClearCart", err)
	}
	return &CartResponse{Items: store.Products()}, nil
}

func toStatus(method string, err error) error {
	if errors.Is(err, cartstore.ErrInvalidProduct) {
		return status.Errorf(codes.InvalidArgument, "%s: %v", method, err)
	}
	return status.Errorf(codes.Internal, "%s failed: %v", method, err)
}

// RegisterCartServiceServer registers srv on s.
func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&CartServiceDesc, srv)
}

// CartServiceDesc describes mobilecart.CartService. Messages use the json codec.
var CartServiceDesc = grpc.ServiceDesc{
	ServiceName: CartServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCart", Handler: unaryHandler("GetCart", CartServiceServer.GetCart)},
		{MethodName: "AddToCart", Handler: unaryHandler("AddToCart", CartServiceServer.AddToCart)},
		{MethodName: "Increment", Handler: unaryHandler("Increment", CartServiceServer.Increment)},
		{MethodName: "Decrement", Handler: unaryHandler("Decrement", CartServiceServer.Decrement)},
		{MethodName: "ClearCart", Handler: unaryHandler("ClearCart", CartServiceServer.ClearCart)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mobilecart/cart_service.go",
}

func fullMethod(method string) string {
	return "/" + CartServiceName + "/" + method
}

func unaryHandler[Req any](method string, call func(CartServiceServer, context.Context, *Req) (*CartResponse, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CartServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CartServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CartServiceClient calls mobilecart.CartService.
type CartServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCartServiceClient(cc grpc.ClientConnInterface) *CartServiceClient {
	return &CartServiceClient{cc: cc}
}

func (c *CartServiceClient) GetCart(ctx context.Context, opts ...grpc.CallOption) (cartstore.Cart, error) {
	return c.invoke(ctx, "GetCart", &GetCartRequest{}, opts)
}

func (c *CartServiceClient) AddToCart(ctx context.Context, p cartstore.Product, opts ...grpc.CallOption) (cartstore.Cart, error) {
	return c.invoke(ctx, "AddToCart", &AddToCartRequest{Product: p}, opts)
}

func (c *CartServiceClient) Increment(ctx context.Context, id string, opts ...grpc.CallOption) (cartstore.Cart, error) {
	return c.invoke(ctx, "Increment", &ItemRequest{ID: id}, opts)
}

func (c *CartServiceClient) Decrement(ctx context.Context, id string, opts ...grpc.CallOption) (cartstore.Cart, error) {
	return c.invoke(ctx, "Decrement", &ItemRequest{ID: id}, opts)
}

func (c *CartServiceClient) ClearCart(ctx context.Context, opts ...grpc.CallOption) (cartstore.Cart, error) {
	return c.invoke(ctx, "ClearCart", &ClearCartRequest{}, opts)
}

func (c *CartServiceClient) invoke(ctx context.Context, method string, in any, opts []grpc.CallOption) (cartstore.Cart, error) {
	out := new(CartResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out.Items, nil
}
