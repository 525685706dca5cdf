package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/byteslice/blobstore"
)

// DescriptorSuffix marks blob names that are committed through DynamoDB.
const DescriptorSuffix = ".json"

// DDBCommitStore implements blobstore.BlobStore backed by S3 with DynamoDB
// for atomic snapshot descriptor commits.
//
// Column data blobs go straight to S3. Descriptor blobs (names ending in
// DescriptorSuffix) are stored as versioned DynamoDB items, so two writers
// publishing the same snapshot name cannot silently overwrite each other.
//
// Table schema:
//   - Partition key: base_uri (string) - base URI joined with the descriptor name
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name byteslice-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	s3Store   *Store
	ddbClient DDBClient
	tableName string
	baseURI   string
}

var _ blobstore.BlobStore = (*DDBCommitStore)(nil)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// ErrConcurrentModification is returned when a concurrent write is detected.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// NewDDBCommitStore creates a new S3+DynamoDB commit store.
// The baseURI should be "s3://bucket/prefix"; it scopes the partition keys.
func NewDDBCommitStore(s3Store *Store, ddbClient DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		s3Store:   s3Store,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   strings.TrimSuffix(baseURI, "/"),
	}
}

func isDescriptor(name string) bool {
	return strings.HasSuffix(name, DescriptorSuffix)
}

func (s *DDBCommitStore) partitionKey(name string) string {
	return s.baseURI + "/" + name
}

// Open opens a blob for reading. Descriptors resolve to their latest version.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if !isDescriptor(name) {
		return s.s3Store.Open(ctx, name)
	}

	version, content, err := s.Latest(ctx, name)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return &descriptorBlob{content: content}, nil
}

// Put writes a blob. Descriptors are committed as a new version.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if !isDescriptor(name) {
		return s.s3Store.Put(ctx, name, data)
	}

	version, _, err := s.Latest(ctx, name)
	if err != nil {
		return err
	}
	return s.Commit(ctx, name, version, data)
}

// Create creates a writable blob. Descriptors are buffered and committed on Close.
func (s *DDBCommitStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if !isDescriptor(name) {
		return s.s3Store.Create(ctx, name)
	}
	return &descriptorWriter{
		commit: func(data []byte) error {
			return s.Put(context.WithoutCancel(ctx), name, data)
		},
	}, nil
}

// Delete deletes a data blob. Descriptor history is kept.
func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	if isDescriptor(name) {
		return nil
	}
	return s.s3Store.Delete(ctx, name)
}

// List lists data blobs with prefix.
func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.s3Store.List(ctx, prefix)
}

// Latest returns the newest committed version of a descriptor and its content.
// Version 0 means nothing was committed yet.
func (s *DDBCommitStore) Latest(ctx context.Context, name string) (uint64, []byte, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.partitionKey(name)},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to query DynamoDB: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, nil, nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, nil, errors.New("invalid version attribute in DynamoDB")
	}
	dataAttr, ok := item["descriptor"].(*types.AttributeValueMemberB)
	if !ok {
		return 0, nil, errors.New("invalid descriptor attribute in DynamoDB")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to parse version: %w", err)
	}

	return version, dataAttr.Value, nil
}

// Commit writes data as version expected+1. It fails with
// ErrConcurrentModification if another writer got there first.
func (s *DDBCommitStore) Commit(ctx context.Context, name string, expected uint64, data []byte) error {
	_, err := s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri":   &types.AttributeValueMemberS{Value: s.partitionKey(name)},
			"version":    &types.AttributeValueMemberN{Value: strconv.FormatUint(expected+1, 10)},
			"descriptor": &types.AttributeValueMemberB{Value: data},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("failed to commit version to DynamoDB: %w", err)
	}

	return nil
}

// descriptorBlob serves a committed descriptor from memory.
type descriptorBlob struct {
	content []byte
}

func (b *descriptorBlob) Close() error {
	return nil
}

func (b *descriptorBlob) Size() int64 {
	return int64(len(b.content))
}

func (b *descriptorBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off >= int64(len(b.content)) {
		return 0, io.EOF
	}
	n := copy(p, b.content[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *descriptorBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off > int64(len(b.content)) {
		return nil, io.EOF
	}
	end := off + length
	if length < 0 || end > int64(len(b.content)) {
		end = int64(len(b.content))
	}
	return blobstore.NopReadCloser(bytes.NewReader(b.content[off:end])), nil
}

// descriptorWriter buffers a descriptor until Close.
type descriptorWriter struct {
	buf    bytes.Buffer
	commit func([]byte) error
	closed bool
}

func (w *descriptorWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	return w.buf.Write(p)
}

func (w *descriptorWriter) Sync() error {
	return nil
}

func (w *descriptorWriter) Close() error {
	if w.closed {
		return io.ErrClosedPipe
	}
	w.closed = true
	return w.commit(w.buf.Bytes())
}
