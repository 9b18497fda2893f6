package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Knowledge service errors (Service: 20).

var (
	// ErrDocType indicates an unrecognized document type.
	ErrDocType = Register(&Errno{
		Code:      MakeCode(ServiceKnowledge, CategoryRequest, 0),
		HTTP:      http.StatusBadRequest,
		GRPCCode:  codes.InvalidArgument,
		MessageEN: "Unrecognized document type",
		MessageZH: "文档类型无效",
	})

	// ErrDocumentParse indicates the uploaded document could not be parsed.
	ErrDocumentParse = Register(&Errno{
		Code:      MakeCode(ServiceKnowledge, CategoryRequest, 1),
		HTTP:      http.StatusUnprocessableEntity,
		GRPCCode:  codes.InvalidArgument,
		MessageEN: "Failed to parse document",
		MessageZH: "文档解析失败",
	})

	// ErrVectorStore indicates a vector store operation failure.
	ErrVectorStore = Register(&Errno{
		Code:      MakeCode(ServiceKnowledge, CategoryStore, 0),
		HTTP:      http.StatusInternalServerError,
		GRPCCode:  codes.Internal,
		MessageEN: "Vector store operation failed",
		MessageZH: "向量存储操作失败",
	})

	// ErrEmbeddingBackend indicates the embedding provider failed.
	ErrEmbeddingBackend = Register(&Errno{
		Code:      MakeCode(ServiceKnowledge, CategoryNetwork, 0),
		HTTP:      http.StatusBadGateway,
		GRPCCode:  codes.Unavailable,
		MessageEN: "Embedding backend failed",
		MessageZH: "向量化后端失败",
	})

	// ErrGenerationBackend indicates the chat provider failed.
	ErrGenerationBackend = Register(&Errno{
		Code:      MakeCode(ServiceKnowledge, CategoryNetwork, 1),
		HTTP:      http.StatusBadGateway,
		GRPCCode:  codes.Unavailable,
		MessageEN: "Generation backend failed",
		MessageZH: "生成后端失败",
	})
)
