package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statement records an exported payment history. The CSV itself lives in
// object storage under ObjectKey.
type Statement struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID     int64              `bson:"clientId" json:"clientId"`
	ObjectKey    string             `bson:"objectKey" json:"-"`
	FileName     string             `bson:"fileName" json:"fileName"`
	PaymentCount int                `bson:"paymentCount" json:"paymentCount"`
	Size         int64              `bson:"size" json:"size"`
	RequestedBy  string             `bson:"requestedBy" json:"requestedBy"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	DownloadURL  string             `bson:"-" json:"downloadUrl,omitempty"`
}
