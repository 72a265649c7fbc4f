// Package pb holds the generated HiringService gRPC bindings.
package pb

//go:generate protoc --go-grpc_out=. --go-grpc_opt=paths=source_relative hiring.proto
