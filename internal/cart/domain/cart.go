package domain

import "time"

// CartLine is one menu item plus quantity inside a cart. Lines belong
// exclusively to their cart and are snapshot-copied into orders at
// submission time.
type CartLine struct {
	ItemID              string  `bson:"item_id" json:"menuItemId"`
	Name                string  `bson:"name" json:"name"`
	UnitPrice           float64 `bson:"unit_price" json:"price"`
	Quantity            int     `bson:"quantity" json:"quantity"`
	ImageRef            string  `bson:"image_ref,omitempty" json:"image,omitempty"`
	SpecialInstructions string  `bson:"special_instructions,omitempty" json:"specialInstructions,omitempty"`
}

// Cart is the single active cart of one owner. All lines belong to the same
// restaurant; totals are always the pricing function of the lines. A cart
// with no lines is deleted, never persisted empty.
type Cart struct {
	ID             string     `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerID        string     `bson:"owner_id" json:"userId"`
	RestaurantID   string     `bson:"restaurant_id" json:"restaurantId"`
	RestaurantName string     `bson:"restaurant_name" json:"restaurantName"`
	Lines          []CartLine `bson:"lines" json:"items"`
	Subtotal       float64    `bson:"subtotal" json:"subtotal"`
	DeliveryFee    float64    `bson:"delivery_fee" json:"deliveryFee"`
	Tax            float64    `bson:"tax" json:"tax"`
	Total          float64    `bson:"total" json:"total"`
	CreatedAt      time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updatedAt"`
}
