package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/codebuildervaibhav/video-converter/internal/naming"
	"github.com/codebuildervaibhav/video-converter/internal/storage"
	"github.com/codebuildervaibhav/video-converter/internal/types"
)

// Request is one conversion request. It is owned by a single Orchestrator
// invocation and never shared.
type Request struct {
	Filename     string
	ContentType  string
	Body         io.Reader
	TargetFormat string
}

// Orchestrator drives a conversion end to end: upload the source, re-fetch
// it for processing, transcode, upload the result, clean up. Strictly
// sequential, no retries; any failure is terminal for the request. Safe for
// concurrent use across requests because every derived name and scratch path
// carries the job ID.
type Orchestrator struct {
	store        storage.ObjectStore
	transcoder   Transcoder
	db           *storage.MetadataDB
	inputBucket  string
	outputBucket string
	scratchDir   string
}

// NewOrchestrator creates an orchestrator. db may be nil, in which case no
// history is recorded.
func NewOrchestrator(
	store storage.ObjectStore,
	transcoder Transcoder,
	db *storage.MetadataDB,
	inputBucket, outputBucket, scratchDir string,
) *Orchestrator {
	return &Orchestrator{
		store:        store,
		transcoder:   transcoder,
		db:           db,
		inputBucket:  inputBucket,
		outputBucket: outputBucket,
		scratchDir:   scratchDir,
	}
}

// Convert runs the full pipeline for one request and returns the output
// identifier the availability check resolves later.
func (o *Orchestrator) Convert(ctx context.Context, req Request) (string, error) {
	// Step 1: validation, before any I/O.
	if req.Filename == "" || req.Body == nil {
		return "", &types.ValidationError{Field: "file", Reason: "missing uploaded file"}
	}
	if req.TargetFormat == "" {
		return "", &types.ValidationError{Field: "format", Reason: "missing target format"}
	}
	if !naming.ValidTargetFormat(req.TargetFormat) {
		return "", &types.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported target format %q", req.TargetFormat)}
	}

	jobID := uuid.New().String()
	baseName := naming.BaseName(req.Filename)

	uploadName := naming.UploadObjectName(jobID, req.Filename)
	outputName := naming.OutputObjectName(jobID, baseName, req.TargetFormat)
	localInput := naming.LocalInputPath(o.scratchDir, jobID, req.Filename)
	localOutput := naming.LocalOutputPath(o.scratchDir, jobID, baseName, req.TargetFormat)

	log.Printf("Job %s: converting %q to %s", jobID, req.Filename, req.TargetFormat)

	// Step 2: write the uploaded bytes to the input bucket. This is also
	// what fires the transcription trigger downstream.
	if err := o.store.Put(ctx, o.inputBucket, uploadName, req.Body, req.ContentType); err != nil {
		log.Printf("Job %s: input upload failed: %v", jobID, err)
		return "", &types.UpstreamError{Stage: types.StageUpload, Cause: err}
	}

	// Step 3: re-fetch the object we just wrote. Deliberately redundant:
	// the transcoder reads from the same durable copy the trigger sees.
	if err := o.store.Download(ctx, o.inputBucket, uploadName, localInput); err != nil {
		log.Printf("Job %s: fetch for processing failed: %v", jobID, err)
		o.removeScratchFile(localInput)
		if errors.Is(err, storage.ErrObjectNotFound) {
			err = fmt.Errorf("uploaded object gs://%s/%s disappeared", o.inputBucket, uploadName)
		}
		return "", &types.UpstreamError{Stage: types.StageFetch, Cause: err}
	}

	// Step 4: external transcoder. On failure the output may not exist or
	// be partial; only the input is known scratch at this point.
	if err := o.transcoder.Transcode(ctx, localInput, localOutput); err != nil {
		log.Printf("Job %s: transcode failed: %v", jobID, err)
		o.removeScratchFile(localInput)
		o.removeScratchFile(localOutput)
		return "", &types.UpstreamError{Stage: types.StageTranscode, Cause: err}
	}

	// Step 6 runs regardless of step 5's outcome.
	defer func() {
		o.removeScratchFile(localInput)
		o.removeScratchFile(localOutput)
	}()

	// Step 5: upload the converted file, with the content-type override
	// when the target format has one.
	if err := o.uploadOutput(ctx, outputName, localOutput, naming.ContentTypeFor(req.TargetFormat)); err != nil {
		log.Printf("Job %s: output upload failed: %v", jobID, err)
		return "", &types.UpstreamError{Stage: types.StageStoreOutput, Cause: err}
	}

	identifier := naming.OutputFilename(jobID, baseName, req.TargetFormat)

	if o.db != nil {
		rec := types.ConversionRecord{
			JobID:            jobID,
			OriginalFilename: req.Filename,
			TargetFormat:     req.TargetFormat,
			OutputObject:     outputName,
			CreatedAt:        time.Now(),
		}
		if err := o.db.SaveConversion(rec); err != nil {
			log.Printf("Job %s: history record failed: %v", jobID, err)
		}
	}

	log.Printf("Job %s: conversion complete, output gs://%s/%s", jobID, o.outputBucket, outputName)
	return identifier, nil
}

func (o *Orchestrator) uploadOutput(ctx context.Context, outputName, localOutput, contentType string) error {
	f, err := os.Open(localOutput)
	if err != nil {
		return fmt.Errorf("converted file missing: %v", err)
	}
	defer f.Close()

	return o.store.Put(ctx, o.outputBucket, outputName, f, contentType)
}

// removeScratchFile removes a scratch file, logging (never failing on) any
// removal error.
func (o *Orchestrator) removeScratchFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to clean up scratch file %s: %v", path, err)
	}
}
