// Package biz provides business logic for the knowledge service: PDF
// parsing, page-scoped chunking, batch embedding, vector retrieval,
// prompt assembly, streamed answering, and citation extraction.
package biz
